package archive

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	calls map[string]ArchivedCall
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calls: make(map[string]ArchivedCall)}
}

func (s *MemoryStore) Save(_ context.Context, call ArchivedCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calls[call.CallID]; ok {
		return nil
	}
	s.calls[call.CallID] = call
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callID string) (ArchivedCall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.calls[callID]
	if !ok {
		return ArchivedCall{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) ListRange(_ context.Context, from, to time.Time) ([]ArchivedCall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ArchivedCall
	for _, a := range s.calls {
		if a.CreatedAt.Before(from) || !a.CreatedAt.Before(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
