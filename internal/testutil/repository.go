package testutil

import (
	"bytes"
	"fmt"
	"sync"

	"moin2git/internal/wiki"
)

// RecordedCommit is a commit captured by MemoryRepository.
type RecordedCommit struct {
	Hash    string
	Path    string
	Content []byte
	Author  wiki.Signature
	Message string
}

// MemoryRepository is an in-memory wiki.Repository for testing.
// It reports wiki.ErrNothingToCommit when a path's content does not change.
type MemoryRepository struct {
	mu      sync.Mutex
	files   map[string][]byte
	commits []RecordedCommit
	// FailFor maps a commit message to an error returned instead of committing.
	FailFor map[string]error
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		files:   make(map[string][]byte),
		FailFor: make(map[string]error),
	}
}

func (r *MemoryRepository) CommitFile(path string, content []byte, author wiki.Signature, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailFor[message]; ok {
		return "", err
	}
	if existing, ok := r.files[path]; ok && bytes.Equal(existing, content) {
		return "", wiki.ErrNothingToCommit
	}

	r.files[path] = append([]byte(nil), content...)
	hash := fmt.Sprintf("%040d", len(r.commits)+1)
	r.commits = append(r.commits, RecordedCommit{
		Hash:    hash,
		Path:    path,
		Content: append([]byte(nil), content...),
		Author:  author,
		Message: message,
	})
	return hash, nil
}

// Commits returns the commits made so far, oldest first.
func (r *MemoryRepository) Commits() []RecordedCommit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCommit(nil), r.commits...)
}

// File returns the current content of a path.
func (r *MemoryRepository) File(path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[path]
	return data, ok
}

// Compile-time check
var _ wiki.Repository = (*MemoryRepository)(nil)
