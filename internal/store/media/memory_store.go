package mediastore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Object)}
}

func (s *MemoryStore) Put(_ context.Context, ownerID, boardID, name string, obj Object) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	key, err := objectKey(ownerID, boardID, name)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.data[key] = Object{MIMEType: obj.MIMEType, Data: append([]byte(nil), obj.Data...)}
	s.mu.Unlock()
	return key, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return Object{}, fmt.Errorf("key is required")
	}
	s.mu.RLock()
	obj, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{MIMEType: obj.MIMEType, Data: append([]byte(nil), obj.Data...)}, nil
}
