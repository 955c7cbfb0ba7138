package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"moin2git/internal/ledger/migrations"
	"moin2git/internal/wiki"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteLedger implements wiki.Ledger using SQLite.
type SQLiteLedger struct {
	db   *sql.DB
	path string
}

var _ wiki.Ledger = (*SQLiteLedger)(nil)

// NewSQLiteLedger opens (creating if needed) the ledger at path and applies
// pending schema migrations. path can be ":memory:".
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating ledger: %w", err)
	}

	return &SQLiteLedger{db: db, path: path}, nil
}

// NewSQLiteLedgerFromDB wraps an existing, already migrated connection.
func NewSQLiteLedgerFromDB(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db}
}

// OpenConnection opens and configures a SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would get its own in-memory database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Run operations

func (l *SQLiteLedger) CreateRun(run *wiki.Run) error {
	_, err := l.db.Exec(`
		INSERT INTO runs (id, operation, data_dir, repo_path, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.DataDir, run.RepoPath, run.Status, run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) FinishRun(run *wiki.Run) error {
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}

	res, err := l.db.Exec(`
		UPDATE runs SET
			status = ?, finished_at = ?,
			pages_migrated = ?, pages_skipped = ?, commits = ?,
			unchanged = ?, already_imported = ?, failed_revisions = ?
		WHERE id = ?`,
		run.Status, finishedAt,
		run.Summary.PagesMigrated, run.Summary.PagesSkipped, run.Summary.Commits,
		run.Summary.Unchanged, run.Summary.AlreadyImported, run.Summary.FailedRevisions,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (l *SQLiteLedger) ListRuns(limit int) ([]*wiki.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.Query(`
		SELECT id, operation, data_dir, repo_path, status, started_at, finished_at,
			pages_migrated, pages_skipped, commits, unchanged, already_imported, failed_revisions
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := []*wiki.Run{}
	for rows.Next() {
		var run wiki.Run
		var finishedAt sql.NullTime
		if err := rows.Scan(
			&run.ID, &run.Operation, &run.DataDir, &run.RepoPath, &run.Status, &run.StartedAt, &finishedAt,
			&run.Summary.PagesMigrated, &run.Summary.PagesSkipped, &run.Summary.Commits,
			&run.Summary.Unchanged, &run.Summary.AlreadyImported, &run.Summary.FailedRevisions,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Revision operations

func (l *SQLiteLedger) FindRevision(page, revisionID string) (*wiki.ImportedRevision, error) {
	var rec wiki.ImportedRevision
	err := l.db.QueryRow(`
		SELECT page, revision_id, status, commit_hash, run_id, imported_at
		FROM imported_revisions
		WHERE page = ? AND revision_id = ?`, page, revisionID,
	).Scan(&rec.Page, &rec.RevisionID, &rec.Status, &rec.CommitHash, &rec.RunID, &rec.ImportedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	return &rec, nil
}

func (l *SQLiteLedger) RecordRevision(rec *wiki.ImportedRevision) error {
	_, err := l.db.Exec(`
		INSERT INTO imported_revisions (page, revision_id, status, commit_hash, run_id, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Page, rec.RevisionID, rec.Status, rec.CommitHash, rec.RunID, rec.ImportedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording revision: %w", err)
	}
	return nil
}

// Path returns the ledger file path, or "" for wrapped connections.
func (l *SQLiteLedger) Path() string {
	return l.path
}

// CheckMigrations verifies the ledger schema is up to date.
func (l *SQLiteLedger) CheckMigrations() error {
	return migrations.CheckStatus(l.db)
}

func (l *SQLiteLedger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
