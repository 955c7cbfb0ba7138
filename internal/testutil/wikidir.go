package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WikiDir builds a wiki data directory on disk inside t.TempDir():
//
//	<tmp>/instance/wiki/data/{user,pages}
type WikiDir struct {
	t       *testing.T
	DataDir string
}

// NewWikiDir creates an empty data directory with a pages/ subdirectory.
func NewWikiDir(t *testing.T) *WikiDir {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "instance", "wiki", "data")
	if err := os.MkdirAll(filepath.Join(dataDir, "pages"), 0755); err != nil {
		t.Fatalf("creating wiki data dir: %v", err)
	}
	return &WikiDir{t: t, DataDir: dataDir}
}

// AddUser writes an account record.
func (w *WikiDir) AddUser(id, content string) {
	w.write(filepath.Join(w.DataDir, "user", id), []byte(content))
}

// AddPage creates an empty page directory.
func (w *WikiDir) AddPage(page string) {
	w.t.Helper()
	if err := os.MkdirAll(filepath.Join(w.DataDir, "pages", page), 0755); err != nil {
		w.t.Fatalf("creating page dir: %v", err)
	}
}

// SetEditLog writes a page edit log.
func (w *WikiDir) SetEditLog(page, log string) {
	w.write(filepath.Join(w.DataDir, "pages", page, "edit-log"), []byte(log))
}

// AddRevision writes a revision body.
func (w *WikiDir) AddRevision(page, revisionID, body string) {
	w.write(filepath.Join(w.DataDir, "pages", page, "revisions", revisionID), []byte(body))
}

// AddAttachment writes an attachment file.
func (w *WikiDir) AddAttachment(page, name string, content []byte) {
	w.write(filepath.Join(w.DataDir, "pages", page, "attachments", name), content)
}

// AddAttachmentDir creates an empty attachments directory for a page.
func (w *WikiDir) AddAttachmentDir(page string) {
	w.t.Helper()
	if err := os.MkdirAll(filepath.Join(w.DataDir, "pages", page, "attachments"), 0755); err != nil {
		w.t.Fatalf("creating attachments dir: %v", err)
	}
}

func (w *WikiDir) write(path string, data []byte) {
	w.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		w.t.Fatalf("writing %s: %v", path, err)
	}
}
