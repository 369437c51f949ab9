package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryStore is an in-process Store. It is the default backing when Redis
// is not configured, and the substitutable store in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) SetBlob(_ context.Context, key string, value []byte) error {
	s.setBlobAt(key, value, s.now())
	return nil
}

// setBlobAt stores a value under an explicit timestamp. The layered store
// uses it to keep the original write time when promoting an entry from L2.
func (s *MemoryStore) setBlobAt(key string, value []byte, storedAt time.Time) {
	b := make([]byte, len(value))
	copy(b, value)

	s.mu.Lock()
	s.data[key] = memoryEntry{value: b, storedAt: storedAt}
	s.mu.Unlock()
}

func (s *MemoryStore) GetBlob(_ context.Context, key string) ([]byte, time.Time, bool, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, false, nil
	}
	return e.value, e.storedAt, true, nil
}

func (s *MemoryStore) DeleteBlob(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	s.data = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
