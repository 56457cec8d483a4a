package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryObjectStore is an in-memory storage.ObjectStore.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// PutErr, when set, is returned by every Put.
	PutErr error
	// DeleteErr, when set, is returned by every DeletePrefix.
	DeleteErr error
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *MemoryObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *MemoryObjectStore) DeletePrefix(_ context.Context, prefix string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
			delete(s.types, key)
		}
	}
	return nil
}

func (s *MemoryObjectStore) PublicURL(key string) string {
	return "https://storage.test/bucket/" + key
}

// Keys lists stored object keys in order.
func (s *MemoryObjectStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored bytes and content type of key.
func (s *MemoryObjectStore) Object(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, s.types[key], ok
}
