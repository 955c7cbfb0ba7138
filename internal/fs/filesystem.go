package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"moin2git/internal/wiki"
)

// OSSource is the real filesystem implementation of wiki.Source.
// It reads a MoinMoin data directory with the os package.
type OSSource struct {
	root   string
	ignore *IgnoreMatcher
}

// NewOSSource creates a source rooted at dataDir. Pages whose decoded
// names match one of the ignore patterns are left out of ListPages.
func NewOSSource(dataDir string, ignore []string) (*OSSource, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir is not a directory: %s", absPath)
	}

	return &OSSource{root: absPath, ignore: NewIgnoreMatcher(ignore)}, nil
}

// Root returns the absolute data directory.
func (s *OSSource) Root() string {
	return s.root
}

// ListUsers returns the account ids under user/.
func (s *OSSource) ListUsers() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "user"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading user directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

// ReadUser returns the raw account file for id.
func (s *OSSource) ReadUser(id string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, "user", id))
}

// ListPages returns the encoded names of all page directories.
func (s *OSSource) ListPages() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "pages"))
	if err != nil {
		return nil, fmt.Errorf("reading pages directory: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if s.ignore.Match(wiki.DecodePageName(entry.Name())) {
			continue
		}
		pages = append(pages, entry.Name())
	}
	return pages, nil
}

// ReadEditLog returns the raw edit-log of a page.
func (s *OSSource) ReadEditLog(page string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.pageDir(page), "edit-log"))
}

// ReadRevision returns one stored revision body.
func (s *OSSource) ReadRevision(page, revisionID string) ([]byte, error) {
	if revisionID == "" || filepath.Base(revisionID) != revisionID {
		return nil, fmt.Errorf("invalid revision id %q: %w", revisionID, fs.ErrNotExist)
	}
	return os.ReadFile(filepath.Join(s.pageDir(page), "revisions", revisionID))
}

// ListAttachments returns the regular files under a page's attachments/.
func (s *OSSource) ListAttachments(page string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.pageDir(page), "attachments"))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// OpenAttachment opens an attachment for reading.
func (s *OSSource) OpenAttachment(page, name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(filepath.Join(s.pageDir(page), "attachments", name))
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat attachment: %w", err)
	}
	return f, info.Size(), nil
}

func (s *OSSource) pageDir(page string) string {
	return filepath.Join(s.root, "pages", page)
}

// Compile-time check that OSSource implements wiki.Source interface
var _ wiki.Source = (*OSSource)(nil)
