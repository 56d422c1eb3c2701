package store

import (
	"context"
	"sync"
)

// MemoryStore is a TokenStore held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	refresh string
	user    []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadRefreshToken(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, nil
}

func (s *MemoryStore) SaveRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = token
	return nil
}

func (s *MemoryStore) LoadUser(context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBytes(s.user), nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneBytes(user)
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = ""
	s.user = nil
	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
