package memory

import (
	"context"
	"fmt"
	"sync"

	"odonto/internal/core"
)

// Store is an in-memory register used by tests and local setups without
// a configured spreadsheet.
type Store struct {
	mu    sync.Mutex
	items []core.Rata
}

func New() *Store {
	return &Store{}
}

// Append stores the installment and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.Rata) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []core.Rata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Rata(nil), s.items...)
}
