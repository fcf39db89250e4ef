package session

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type memoryEntry struct {
	val []byte
	exp time.Time
}

// MemoryStorage is an in-process fiber.Storage, used with the sqlite engine and in tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

var _ fiber.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]memoryEntry)}
}

// Get returns a copy of the value of key, nil when missing or expired.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, nil
	}

	out := make([]byte, len(e.val))
	copy(out, e.val)

	return out, nil
}

// Set stores a copy of val. A zero exp never expires.
func (s *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)

	e := memoryEntry{val: buf}
	if exp > 0 {
		e.exp = time.Now().Add(exp)
	}

	s.data[key] = e

	return nil
}

// Delete removes key.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset removes every key.
func (s *MemoryStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]memoryEntry)

	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error { return nil }
