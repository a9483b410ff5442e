package store

import (
	"context"
	"sync"

	"github.com/credverse/credential-portal/internal/domain"
)

// MemoryStore is an in-process identity slot used in tests and when the
// portal runs without redis. Records are copied on the way in and out so
// callers cannot mutate the stored state.
type MemoryStore struct {
	mu       sync.Mutex
	identity *domain.UserIdentity
}

var _ domain.IdentityStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory identity slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored identity or domain.ErrIdentityNotFound.
func (s *MemoryStore) Get(ctx context.Context) (*domain.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, domain.ErrIdentityNotFound
	}
	copied := *s.identity
	return &copied, nil
}

// Put overwrites the slot with the complete record.
func (s *MemoryStore) Put(ctx context.Context, identity *domain.UserIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *identity
	s.identity = &copied
	return nil
}

// Clear removes the slot.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}
