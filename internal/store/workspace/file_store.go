package workspacestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"remixcanvas/internal/safeio"
	"remixcanvas/internal/workspace"
)

// ownerFilePattern keeps owner-derived filenames filesystem-safe.
var ownerFilePattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileStore keeps one JSON document per owner under a safeio-rooted
// directory. Writes are atomic replaces.
type FileStore struct {
	root *safeio.Root
}

func NewFileStore(dir string) (*FileStore, error) {
	root, err := safeio.New(dir)
	if err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Load(_ context.Context, ownerID string) (*workspace.Graph, bool, error) {
	if s == nil || s.root == nil {
		return nil, false, fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return nil, false, fmt.Errorf("owner_id is required")
	}
	raw, err := s.root.ReadFile(ownerFile(owner))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var g workspace.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, false, fmt.Errorf("decode workspace for %s: %w", owner, err)
	}
	g.Normalize()
	return &g, true, nil
}

func (s *FileStore) Save(_ context.Context, ownerID string, g *workspace.Graph) error {
	if s == nil || s.root == nil {
		return fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return fmt.Errorf("owner_id is required")
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return s.root.WriteFileAtomic(ownerFile(owner), raw)
}

func ownerFile(owner string) string {
	return ownerFilePattern.ReplaceAllString(owner, "_") + ".json"
}
