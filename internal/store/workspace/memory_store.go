package workspacestore

import (
	"context"
	"fmt"
	"sync"

	"remixcanvas/internal/workspace"
)

type MemoryStore struct {
	mu      sync.RWMutex
	byOwner map[string]*workspace.Graph
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byOwner: make(map[string]*workspace.Graph)}
}

func (s *MemoryStore) Load(_ context.Context, ownerID string) (*workspace.Graph, bool, error) {
	if s == nil {
		return nil, false, fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return nil, false, fmt.Errorf("owner_id is required")
	}
	s.mu.RLock()
	g, ok := s.byOwner[owner]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return g.Clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ownerID string, g *workspace.Graph) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return fmt.Errorf("owner_id is required")
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}
	s.mu.Lock()
	s.byOwner[owner] = g.Clone()
	s.mu.Unlock()
	return nil
}
