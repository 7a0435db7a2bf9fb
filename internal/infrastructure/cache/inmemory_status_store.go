package cache

import (
	"context"
	"sync"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

// InMemoryStatusStore implements syncapp.StatusStore for a single process.
// State is lost on restart and not shared between instances.
type InMemoryStatusStore struct {
	mu      sync.RWMutex
	results map[tally.Kind]syncapp.Result
}

// NewInMemoryStatusStore creates an empty store
func NewInMemoryStatusStore() *InMemoryStatusStore {
	return &InMemoryStatusStore{results: make(map[tally.Kind]syncapp.Result)}
}

// Save stores result as the latest run of its kind
func (s *InMemoryStatusStore) Save(_ context.Context, result syncapp.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Kind] = result
	return nil
}

// Last returns a copy of the latest run of kind, or nil
func (s *InMemoryStatusStore) Last(_ context.Context, kind tally.Kind) (*syncapp.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[kind]
	if !ok {
		return nil, nil
	}
	if r.Failure != nil {
		f := *r.Failure
		r.Failure = &f
	}
	return &r, nil
}

var _ syncapp.StatusStore = (*InMemoryStatusStore)(nil)
