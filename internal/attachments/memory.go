// Package attachments provides destinations for copied wiki attachments.
package attachments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"moin2git/internal/wiki"
)

// MemoryStore is an in-memory implementation of wiki.AttachmentStore.
// It is useful for testing and for dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ wiki.AttachmentStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Put stores the content read from r under key. A non-negative size must
// match the number of bytes read.
func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	written, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = buf.Bytes()
	return nil
}

// Get returns a copy of the content stored under key.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
