package app

import (
	"time"

	"moin2git/internal/wiki"
)

// Operation tracks the CLI command being run. Operations live in memory
// until a command that writes to a repository persists them as a run in
// that repository's ledger.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
	Status    string // wiki.RunSuccess or wiki.RunError
	run       *wiki.Run
}

// NewOperation creates a new in-memory operation.
func NewOperation(id, name string, startedAt time.Time) *Operation {
	return &Operation{
		ID:        id,
		Name:      name,
		StartedAt: startedAt,
		Status:    wiki.RunSuccess,
	}
}

// Persisted returns true if the operation has been recorded as a run.
func (op *Operation) Persisted() bool {
	return op.run != nil
}

// Begin returns the run record for a migration of dataDir into repoPath.
func (op *Operation) Begin(dataDir, repoPath string) *wiki.Run {
	op.run = &wiki.Run{
		ID:        op.ID,
		Operation: op.Name,
		DataDir:   dataDir,
		RepoPath:  repoPath,
		Status:    wiki.RunRunning,
		StartedAt: op.StartedAt,
	}
	return op.run
}

// Finish stores the outcome on the run. A non-nil err, or any failed
// revision, marks the operation as an error.
func (op *Operation) Finish(summary *wiki.Summary, err error, at time.Time) *wiki.Run {
	if summary != nil {
		op.run.Summary = *summary
	}
	if err != nil || op.run.Summary.FailedRevisions > 0 {
		op.Status = wiki.RunError
	}
	op.run.Status = op.Status
	op.run.FinishedAt = &at
	return op.run
}
