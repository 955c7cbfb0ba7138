package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"moin2git/internal/wiki"
)

// MockPage is a page in the mock source.
type MockPage struct {
	EditLog     *string // nil means the page has no edit-log file
	Revisions   map[string][]byte
	Attachments map[string][]byte // nil means no attachments directory
}

// MockSource is an in-memory wiki.Source for testing.
type MockSource struct {
	root  string
	users map[string][]byte
	pages map[string]*MockPage
}

// NewMockSource creates an empty mock source.
func NewMockSource() *MockSource {
	return &MockSource{
		root:  "/srv/wiki/data",
		users: make(map[string][]byte),
		pages: make(map[string]*MockPage),
	}
}

// AddUser adds an account record.
func (m *MockSource) AddUser(id, content string) {
	m.users[id] = []byte(content)
}

// AddPage adds a page directory without an edit log.
func (m *MockSource) AddPage(page string) *MockPage {
	p, ok := m.pages[page]
	if !ok {
		p = &MockPage{Revisions: make(map[string][]byte)}
		m.pages[page] = p
	}
	return p
}

// SetEditLog sets the raw edit log of a page, creating the page if needed.
func (m *MockSource) SetEditLog(page, log string) {
	m.AddPage(page).EditLog = &log
}

// AddRevision stores a revision body for a page.
func (m *MockSource) AddRevision(page, revisionID, body string) {
	m.AddPage(page).Revisions[revisionID] = []byte(body)
}

// AddAttachment stores an attachment for a page.
func (m *MockSource) AddAttachment(page, name string, content []byte) {
	p := m.AddPage(page)
	if p.Attachments == nil {
		p.Attachments = make(map[string][]byte)
	}
	p.Attachments[name] = content
}

// AddAttachmentDir gives a page an empty attachments directory.
func (m *MockSource) AddAttachmentDir(page string) {
	p := m.AddPage(page)
	if p.Attachments == nil {
		p.Attachments = make(map[string][]byte)
	}
}

func (m *MockSource) Root() string { return m.root }

func (m *MockSource) ListUsers() ([]string, error) {
	return sortedKeys(m.users), nil
}

func (m *MockSource) ReadUser(id string) ([]byte, error) {
	data, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, fs.ErrNotExist)
	}
	return data, nil
}

func (m *MockSource) ListPages() ([]string, error) {
	pages := make([]string, 0, len(m.pages))
	for name := range m.pages {
		pages = append(pages, name)
	}
	// Reverse order so callers cannot rely on listing order.
	sort.Sort(sort.Reverse(sort.StringSlice(pages)))
	return pages, nil
}

func (m *MockSource) ReadEditLog(page string) ([]byte, error) {
	p, ok := m.pages[page]
	if !ok || p.EditLog == nil {
		return nil, fmt.Errorf("edit-log of %s: %w", page, fs.ErrNotExist)
	}
	return []byte(*p.EditLog), nil
}

func (m *MockSource) ReadRevision(page, revisionID string) ([]byte, error) {
	p, ok := m.pages[page]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", page, fs.ErrNotExist)
	}
	body, ok := p.Revisions[revisionID]
	if !ok {
		return nil, fmt.Errorf("revision %s of %s: %w", revisionID, page, fs.ErrNotExist)
	}
	return body, nil
}

func (m *MockSource) ListAttachments(page string) ([]string, error) {
	p, ok := m.pages[page]
	if !ok || p.Attachments == nil {
		return nil, fmt.Errorf("attachments of %s: %w", page, fs.ErrNotExist)
	}
	return sortedKeys(p.Attachments), nil
}

func (m *MockSource) OpenAttachment(page, name string) (io.ReadCloser, int64, error) {
	p, ok := m.pages[page]
	if !ok || p.Attachments == nil {
		return nil, 0, fmt.Errorf("attachments of %s: %w", page, fs.ErrNotExist)
	}
	data, ok := p.Attachments[name]
	if !ok {
		return nil, 0, fmt.Errorf("attachment %s of %s: %w", name, page, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compile-time check
var _ wiki.Source = (*MockSource)(nil)
