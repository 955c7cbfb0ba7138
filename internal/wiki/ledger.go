package wiki

import "time"

// Run statuses.
const (
	RunRunning = "running"
	RunSuccess = "success"
	RunError   = "error"
)

// Imported revision statuses.
const (
	RevisionCommitted = "committed"
	RevisionUnchanged = "unchanged"
)

// Summary counts what a migration run did.
type Summary struct {
	PagesMigrated   int
	PagesSkipped    int
	Commits         int
	Unchanged       int
	AlreadyImported int
	FailedRevisions int
}

// Run is one recorded invocation of a migration command.
type Run struct {
	ID         string
	Operation  string
	DataDir    string
	RepoPath   string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    Summary
}

// ImportedRevision records that a page revision has been replayed into the repository.
type ImportedRevision struct {
	Page       string // encoded page name
	RevisionID string
	Status     string // RevisionCommitted or RevisionUnchanged
	CommitHash string // empty when unchanged
	RunID      string
	ImportedAt time.Time
}

// Ledger persists migration runs and the revisions they imported,
// so a repeated migration into the same repository skips finished work.
type Ledger interface {
	// CreateRun records a new run.
	CreateRun(run *Run) error

	// FinishRun stores the final status, summary and finish time of a run.
	FinishRun(run *Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// FindRevision returns the import record for a page revision, or nil if
	// the revision has not been imported.
	FindRevision(page, revisionID string) (*ImportedRevision, error)

	// RecordRevision stores an import record.
	RecordRevision(rec *ImportedRevision) error

	// Close releases the ledger.
	Close() error
}
