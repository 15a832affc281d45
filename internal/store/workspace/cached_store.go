package workspacestore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"remixcanvas/internal/workspace"
)

// CachedStore fronts a slower backend with an in-process LRU of graphs.
// Safe only under the single-active-editor assumption: a save from another
// process is not observed until the entry is evicted.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, *workspace.Graph]
}

func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner store is required")
	}
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *workspace.Graph](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Load(ctx context.Context, ownerID string) (*workspace.Graph, bool, error) {
	if s == nil {
		return nil, false, fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if g, ok := s.cache.Get(owner); ok {
		return g.Clone(), true, nil
	}
	g, ok, err := s.inner.Load(ctx, owner)
	if err != nil || !ok {
		return nil, ok, err
	}
	s.cache.Add(owner, g.Clone())
	return g, true, nil
}

func (s *CachedStore) Save(ctx context.Context, ownerID string, g *workspace.Graph) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if err := s.inner.Save(ctx, owner, g); err != nil {
		return err
	}
	s.cache.Add(owner, g.Clone())
	return nil
}
