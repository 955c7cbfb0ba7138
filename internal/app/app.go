package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"moin2git/internal/attachments"
	"moin2git/internal/config"
	"moin2git/internal/convert"
	"moin2git/internal/fs"
	"moin2git/internal/gitrepo"
	"moin2git/internal/ledger"
	"moin2git/internal/wiki"
)

// ErrRevisionsFailed means a migration finished but some revisions could
// not be committed. The run is recorded with status error.
var ErrRevisionsFailed = errors.New("some revisions could not be committed")

// MigrateRequest names the wiki and repository of a migration. Empty
// Target and Extension fall back to the [migrate] config section.
type MigrateRequest struct {
	DataDir   string
	RepoPath  string
	Target    string
	Extension string
}

// App is the application layer between the CLI and the wiki services.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and owns the log file until Close.
type App struct {
	cfg     *config.Config
	logger  wiki.Logger
	logFile *os.File
	clock   wiki.Clock
	op      *Operation
}

// NewApp creates an App from the given config.
// operation identifies the CLI command being run (e.g. "migrate", "users").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	return newApp(cfg, operation, wiki.RealClock{}, wiki.UUIDGenerator{}, consoleWriter())
}

func newApp(cfg *config.Config, operation string, clock wiki.Clock, ids wiki.IDGenerator, console io.Writer) (*App, error) {
	op := NewOperation(ids.New(), operation, clock.Now())

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  &slogAdapter{l: logger},
		logFile: logFile,
		clock:   clock,
		op:      op,
	}, nil
}

// Operation returns the operation tracked by this App.
func (a *App) Operation() *Operation {
	return a.op
}

// Migrate replays the page history of a wiki data directory into a Git
// repository, initializing the repository when needed. The returned run is
// non-nil once the run has been recorded, even when an error is returned.
func (a *App) Migrate(ctx context.Context, req MigrateRequest) (*wiki.Run, error) {
	target := req.Target
	if target == "" {
		target = a.cfg.Migrate.Target
	}
	extension := req.Extension
	if extension == "" {
		extension = a.cfg.Migrate.Extension
	}

	gateway, err := convert.NewGatewayFromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("creating converter: %w", err)
	}

	source, err := a.openSource(req.DataDir)
	if err != nil {
		return nil, err
	}

	baseDir := a.wikiBaseDir(source.Root())
	if err := gateway.Verify(ctx, target, baseDir); err != nil {
		return nil, err
	}

	repo, err := gitrepo.Open(req.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	l, err := ledger.NewLedgerFromConfig(a.cfg.Ledger, repo.Root())
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer l.Close()

	if err := l.CheckMigrations(); err != nil {
		return nil, fmt.Errorf("ledger schema out of date: %w", err)
	}

	run := a.op.Begin(source.Root(), repo.Root())
	if err := l.CreateRun(run); err != nil {
		return nil, err
	}

	a.logger.Info("starting migration", "data_dir", source.Root(), "repo", repo.Root(), "target", target, "base_dir", baseDir)

	svc := wiki.NewMigrationService(source, repo, gateway, l, a.logger, a.clock, wiki.MigrateOptions{
		RunID:         run.ID,
		Target:        target,
		Extension:     extension,
		FallbackEmail: a.cfg.Migrate.FallbackEmail,
		BaseDir:       baseDir,
	})
	summary, migrateErr := svc.Migrate(ctx)
	if migrateErr == nil && summary.FailedRevisions > 0 {
		migrateErr = fmt.Errorf("%w: %d failed", ErrRevisionsFailed, summary.FailedRevisions)
	}

	a.op.Finish(summary, migrateErr, a.clock.Now())
	if err := l.FinishRun(run); err != nil && migrateErr == nil {
		migrateErr = fmt.Errorf("finishing run: %w", err)
	}
	if migrateErr != nil {
		a.logger.Error("migration failed", "error", migrateErr)
	}
	return run, migrateErr
}

// Users returns every account record of a wiki data directory.
func (a *App) Users(dataDir string) (wiki.Users, error) {
	source, err := a.openSource(dataDir)
	if err != nil {
		return nil, err
	}
	return wiki.LoadUsers(source)
}

// CopyAttachments copies every page attachment to dest, a directory or
// an s3://bucket/prefix URL.
func (a *App) CopyAttachments(ctx context.Context, dataDir, dest string) (*wiki.AttachmentSummary, error) {
	source, err := a.openSource(dataDir)
	if err != nil {
		return nil, err
	}

	store, err := attachments.NewStoreFromConfig(ctx, a.cfg.Attachments, dest)
	if err != nil {
		return nil, fmt.Errorf("creating attachment store: %w", err)
	}

	summary, err := wiki.NewAttachmentCopier(source, store, a.logger).CopyAll(ctx)
	if err != nil {
		a.op.Status = wiki.RunError
		return summary, err
	}
	a.logger.Info("attachments copied", "pages", summary.Pages, "files", summary.Files, "dest", dest)
	return summary, nil
}

// History returns the most recent migration runs recorded for the
// repository at repoPath. A repository without a ledger has no history.
func (a *App) History(repoPath string, limit int) ([]*wiki.Run, error) {
	if a.cfg.Ledger.Type == "memory" {
		return nil, nil
	}

	path, err := ledger.Location(a.cfg.Ledger, repoPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat ledger: %w", err)
	}

	l, err := ledger.NewSQLiteLedger(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer l.Close()

	return l.ListRuns(limit)
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

func (a *App) openSource(dataDir string) (*fs.OSSource, error) {
	patterns := append([]string{}, a.cfg.Migrate.Ignore...)
	if a.cfg.Migrate.IgnoreFile != "" {
		filePatterns, err := fs.ParseIgnoreFile(a.cfg.Migrate.IgnoreFile)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
	}

	source, err := fs.NewOSSource(dataDir, patterns)
	if err != nil {
		return nil, fmt.Errorf("opening wiki data dir: %w", err)
	}
	return source, nil
}

// wikiBaseDir is the wiki instance directory: renderer.wiki_dir when set,
// otherwise two levels above the data directory (<instance>/wiki/data).
func (a *App) wikiBaseDir(dataDir string) string {
	if a.cfg.Renderer.WikiDir != "" {
		return a.cfg.Renderer.WikiDir
	}
	return filepath.Dir(filepath.Dir(dataDir))
}
