package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"moin2git/internal/wiki"
)

// FileSystemStore writes attachments below a root directory, one file
// per key:
//
//	<root>/
//	  <decoded page>/
//	    <file name>
type FileSystemStore struct {
	root string
}

var _ wiki.AttachmentStore = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store rooted at root, creating it if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("filesystem store requires a destination directory")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

// Root returns the destination directory.
func (s *FileSystemStore) Root() string {
	return s.root
}

var _ wiki.DirStore = (*FileSystemStore)(nil)

// MakeDir creates <root>/<dir>, so pages without attachments still get
// their directory.
func (s *FileSystemStore) MakeDir(ctx context.Context, dir string) error {
	destPath, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destPath, 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	return nil
}

// Put writes the content read from r to <root>/<key>. Keys that would
// leave the root are rejected.
func (s *FileSystemStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	destPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	return writeFile(destPath, r, size)
}

func (s *FileSystemStore) resolve(key string) (string, error) {
	clean := path.Clean(key)
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid attachment key: %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// writeFile writes data from r to destPath using a temp file and rename.
// A negative expectedSize skips the size check.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if expectedSize >= 0 && written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
