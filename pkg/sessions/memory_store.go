package sessions

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	email     string
	expiresAt time.Time
}

// MemoryStore is an in-memory session store for tests and local runs
// without Redis. Expired entries are dropped lazily on read.
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Put binds id to email for ttl.
func (s *MemoryStore) Put(_ context.Context, id, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{
		email:     email,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the email bound to id, or ErrNoSession.
func (s *MemoryStore) Get(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return "", ErrNoSession
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, id)
		return "", ErrNoSession
	}
	return entry.email, nil
}

// Delete removes id. Deleting an absent id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
