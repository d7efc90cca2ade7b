package identity

import (
	"context"
	"sync"
)

// MemoryStore keeps the user in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	user *User
	err  error
}

// NewMemoryStore creates a store, optionally pre-populated with u.
func NewMemoryStore(u *User) *MemoryStore {
	s := &MemoryStore{}
	if u != nil {
		copied := *u
		s.user = &copied
	}
	return s
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemoryStore) Get(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil {
		return nil, nil
	}
	copied := *s.user
	return &copied, nil
}

func (s *MemoryStore) Set(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.user = &u
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.user = nil
	return nil
}
