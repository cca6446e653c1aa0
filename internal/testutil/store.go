package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/parsegrid/internal/objectstore"
)

// MemoryStore is an in-memory objectstore.Store that counts Get calls.
type MemoryStore struct {
	// Delay is applied to every Get, to widen race windows in tests.
	Delay time.Duration

	mu      sync.Mutex
	objects map[objectID][]byte
	denied  map[objectID]bool
	calls   map[objectID]int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[objectID][]byte),
		denied:  make(map[objectID]bool),
		calls:   make(map[objectID]int),
	}
}

type objectID struct {
	bucket, key string
}

func (id objectID) String() string {
	return id.bucket + "/" + id.key
}

// Put stores an object.
func (s *MemoryStore) Put(bucket, key, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectID{bucket: bucket, key: key}] = []byte(body)
}

// Deny makes every Get of the object fail with ErrAccessDenied.
func (s *MemoryStore) Deny(bucket, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[objectID{bucket: bucket, key: key}] = true
}

// Get implements objectstore.Store.
func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	id := objectID{bucket: bucket, key: key}
	s.mu.Lock()
	s.calls[id]++
	data, ok := s.objects[id]
	denied := s.denied[id]
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if denied {
		return nil, fmt.Errorf("get %s: %w", id, objectstore.ErrAccessDenied)
	}
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, objectstore.ErrNotFound)
	}
	return data, nil
}

// Calls returns how many times the object was requested.
func (s *MemoryStore) Calls(bucket, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[objectID{bucket: bucket, key: key}]
}

// TotalCalls returns the number of Get calls across all objects.
func (s *MemoryStore) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}
