package wiki

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// DefaultExtension is appended to decoded page names to form repository paths.
const DefaultExtension = "rst"

// MigrateOptions controls how revisions are converted and committed.
type MigrateOptions struct {
	// RunID tags the ledger records written by this migration.
	RunID string
	// Target is the markup format to convert to. Empty keeps raw bodies.
	Target string
	// Extension is appended to page paths. Defaults to DefaultExtension.
	Extension string
	// FallbackEmail is used for authors without an email.
	FallbackEmail string
	// BaseDir is the wiki instance directory handed to the converter.
	BaseDir string
}

// Revision is a log entry whose body could be read.
type Revision struct {
	RevisionDescriptor
	Body []byte
}

// PageVersion is one revision ready to be committed.
type PageVersion struct {
	RevisionID string
	Date       time.Time
	Content    string
	Author     Author
	Message    string
}

// MigrationService replays wiki page history into a Repository.
type MigrationService struct {
	source    Source
	repo      Repository
	converter Converter
	ledger    Ledger
	logger    Logger
	clock     Clock
	opts      MigrateOptions
}

// NewMigrationService creates a MigrationService with the provided dependencies.
func NewMigrationService(source Source, repo Repository, converter Converter, ledger Ledger, logger Logger, clock Clock, opts MigrateOptions) *MigrationService {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.FallbackEmail == "" {
		opts.FallbackEmail = DefaultFallbackEmail
	}
	return &MigrationService{
		source:    source,
		repo:      repo,
		converter: converter,
		ledger:    ledger,
		logger:    logger,
		clock:     clock,
		opts:      opts,
	}
}

// Migrate replays every page in the source, in sorted page name order.
//
// Per-revision commit failures are logged and counted in the summary.
// Conversion and ledger errors abort the run.
func (s *MigrationService) Migrate(ctx context.Context) (*Summary, error) {
	users, err := LoadUsers(s.source)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}

	pages, err := s.source.ListPages()
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	sort.Strings(pages)

	summary := &Summary{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.migratePage(ctx, page, users, summary); err != nil {
			return summary, fmt.Errorf("migrating page %s: %w", page, err)
		}
	}

	s.logger.Info("migration complete",
		"pages", summary.PagesMigrated,
		"skipped", summary.PagesSkipped,
		"commits", summary.Commits,
		"unchanged", summary.Unchanged,
		"already_imported", summary.AlreadyImported,
		"failed", summary.FailedRevisions,
	)
	return summary, nil
}

// LoadRevisions returns the readable revisions of a page in log order.
// A missing or blank edit log yields no revisions.
func (s *MigrationService) LoadRevisions(page string) ([]*Revision, error) {
	data, err := s.source.ReadEditLog(page)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading edit log: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var revisions []*Revision
	for _, d := range ParseEditLog(string(data)) {
		body, err := s.source.ReadRevision(page, d.RevisionID)
		if err != nil {
			s.logger.Debug("revision body unreadable", "page", page, "revision", d.RevisionID, "error", err)
			continue
		}
		revisions = append(revisions, &Revision{RevisionDescriptor: d, Body: body})
	}
	return revisions, nil
}

// BuildVersion resolves the author of a revision and converts its body.
func (s *MigrationService) BuildVersion(ctx context.Context, identity PageIdentity, rev *Revision, users Users) (*PageVersion, error) {
	content, err := s.converter.Convert(ctx, ConvertRequest{
		BaseDir:  s.opts.BaseDir,
		PageName: identity.Decoded,
		Body:     string(rev.Body),
		Target:   s.opts.Target,
	})
	if err != nil {
		return nil, fmt.Errorf("converting revision %s: %w", rev.RevisionID, err)
	}

	author := ResolveAuthor(users, rev.AuthorID, rev.AuthorToken, s.opts.FallbackEmail)
	return &PageVersion{
		RevisionID: rev.RevisionID,
		Date:       rev.Time(),
		Content:    content,
		Author:     author,
		Message:    rev.Comment,
	}, nil
}

func (s *MigrationService) migratePage(ctx context.Context, page string, users Users, summary *Summary) error {
	revisions, err := s.LoadRevisions(page)
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		s.logger.Info("ignoring page (no revisions found)", "page", page)
		summary.PagesSkipped++
		return nil
	}

	identity := NewPageIdentity(page)
	path, err := PagePath(identity.Decoded, s.opts.Extension)
	if err != nil {
		s.logger.Error("ignoring page", "page", page, "error", err)
		summary.PagesSkipped++
		return nil
	}
	s.logger.Info("creating page", "page", identity.Decoded, "path", path, "revisions", len(revisions))

	for _, rev := range revisions {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := s.ledger.FindRevision(page, rev.RevisionID)
		if err != nil {
			return fmt.Errorf("checking ledger: %w", err)
		}
		if existing != nil {
			s.logger.Debug("revision already imported", "page", page, "revision", rev.RevisionID)
			summary.AlreadyImported++
			continue
		}

		version, err := s.BuildVersion(ctx, identity, rev, users)
		if err != nil {
			return err
		}

		record := &ImportedRevision{
			Page:       page,
			RevisionID: rev.RevisionID,
			Status:     RevisionCommitted,
			RunID:      s.opts.RunID,
		}

		sig := Signature{Name: version.Author.Name, Email: version.Author.Email, When: version.Date}
		hash, err := s.repo.CommitFile(path, []byte(version.Content), sig, version.Message)
		switch {
		case errors.Is(err, ErrNothingToCommit):
			s.logger.Debug("revision unchanged", "path", path, "revision", rev.RevisionID)
			record.Status = RevisionUnchanged
			summary.Unchanged++
		case err != nil:
			s.logger.Error("commit failed", "path", path, "revision", rev.RevisionID, "error", err)
			summary.FailedRevisions++
			continue
		default:
			s.logger.Debug("revision committed", "path", path, "revision", rev.RevisionID, "commit", hash)
			record.CommitHash = hash
			summary.Commits++
		}

		record.ImportedAt = s.clock.Now()
		if err := s.ledger.RecordRevision(record); err != nil {
			return fmt.Errorf("recording revision %s: %w", rev.RevisionID, err)
		}
	}

	summary.PagesMigrated++
	return nil
}
