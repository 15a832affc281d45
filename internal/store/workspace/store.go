// Package workspacestore persists workspace graphs keyed by owner identity.
package workspacestore

import (
	"context"
	"errors"
	"strings"

	"remixcanvas/internal/workspace"
)

var ErrNotFound = errors.New("workspace not found")

// Store is the opaque load/save contract the engine depends on. Load returns
// (graph, false, nil) when the owner has no saved workspace yet.
type Store interface {
	Load(ctx context.Context, ownerID string) (*workspace.Graph, bool, error)
	Save(ctx context.Context, ownerID string, g *workspace.Graph) error
}

func normalizeOwnerID(v string) string { return strings.TrimSpace(v) }
