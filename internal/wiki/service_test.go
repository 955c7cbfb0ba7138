package wiki_test

import (
	"context"
	"errors"
	"testing"

	"moin2git/internal/testutil"
	"moin2git/internal/wiki"
)

type serviceFixture struct {
	source    *testutil.MockSource
	repo      *testutil.MemoryRepository
	converter *testutil.StubConverter
	ledger    wiki.Ledger
	clock     *testutil.StubClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	return &serviceFixture{
		source:    testutil.NewMockSource(),
		repo:      testutil.NewMemoryRepository(),
		converter: testutil.NewStubConverter(),
		ledger:    testutil.NewTestLedger(t),
		clock:     testutil.FixedClock(),
	}
}

func (f *serviceFixture) service(opts wiki.MigrateOptions) *wiki.MigrationService {
	if opts.RunID == "" {
		opts.RunID = "run-1"
	}
	return wiki.NewMigrationService(f.source, f.repo, f.converter, f.ledger, wiki.NewNopLogger(), f.clock, opts)
}

func TestMigrationService_Migrate(t *testing.T) {
	t.Run("two revisions become two ordered commits", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.AddUser("1111.22.333", "name=Tomás Sánchez\nemail=tomas@example.org\n")
		f.source.SetEditLog("Tom(c3a1)s", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Tomás", "10.0.0.1", "1111.22.333", "created page"),
			testutil.EditLogLine(1700003600, "00000002", "Tomás", "10.0.0.2", "", "fixed typo"),
		))
		f.source.AddRevision("Tom(c3a1)s", "00000001", "first body")
		f.source.AddRevision("Tom(c3a1)s", "00000002", "second body")

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}

		commits := f.repo.Commits()
		if len(commits) != 2 {
			t.Fatalf("got %d commits, want 2", len(commits))
		}

		first, second := commits[0], commits[1]
		if first.Path != "Tomás.rst" || second.Path != "Tomás.rst" {
			t.Errorf("paths = %q, %q; want Tomás.rst", first.Path, second.Path)
		}
		if string(first.Content) != "first body" || string(second.Content) != "second body" {
			t.Errorf("contents = %q, %q", first.Content, second.Content)
		}
		if first.Author.Name != "Tomás Sánchez" || first.Author.Email != "tomas@example.org" {
			t.Errorf("first author = %+v", first.Author)
		}
		if second.Author.Name != "10.0.0.2" || second.Author.Email != wiki.DefaultFallbackEmail {
			t.Errorf("second author = %+v, want token fallback", second.Author)
		}
		if first.Author.When.Unix() != 1700000000 || second.Author.When.Unix() != 1700003600 {
			t.Errorf("dates = %d, %d", first.Author.When.Unix(), second.Author.When.Unix())
		}
		if first.Message != "created page" || second.Message != "fixed typo" {
			t.Errorf("messages = %q, %q", first.Message, second.Message)
		}

		want := wiki.Summary{PagesMigrated: 1, Commits: 2}
		if *summary != want {
			t.Errorf("summary = %+v, want %+v", *summary, want)
		}
	})

	t.Run("absent and blank logs are skipped", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.AddPage("NoLog")
		f.source.SetEditLog("Blank", "\n  \n")
		f.source.SetEditLog("Real", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Real", "h", "", "c"),
		))
		f.source.AddRevision("Real", "00000001", "body")

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if len(f.repo.Commits()) != 1 {
			t.Errorf("got %d commits, want 1", len(f.repo.Commits()))
		}
		if summary.PagesSkipped != 2 || summary.PagesMigrated != 1 {
			t.Errorf("summary = %+v, want 2 skipped and 1 migrated", *summary)
		}
	})

	t.Run("missing revision file is dropped", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.SetEditLog("Partial", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Partial", "h", "", "gone"),
			testutil.EditLogLine(1700000100, "00000002", "Partial", "h", "", "kept"),
		))
		f.source.AddRevision("Partial", "00000002", "body")
		f.source.SetEditLog("Orphan", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Orphan", "h", "", "gone"),
		))

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		commits := f.repo.Commits()
		if len(commits) != 1 || commits[0].Message != "kept" {
			t.Fatalf("commits = %+v, want only the kept revision", commits)
		}
		if summary.PagesSkipped != 1 {
			t.Errorf("PagesSkipped = %d, want 1 for the orphan page", summary.PagesSkipped)
		}
	})

	t.Run("pages are migrated in sorted order", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		for _, page := range []string{"Charlie", "Alpha", "Bravo"} {
			f.source.SetEditLog(page, testutil.EditLog(testutil.EditLogLine(1700000000, "00000001", page, "h", "", page)))
			f.source.AddRevision(page, "00000001", page)
		}

		if _, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background()); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		commits := f.repo.Commits()
		if len(commits) != 3 {
			t.Fatalf("got %d commits, want 3", len(commits))
		}
		for i, want := range []string{"Alpha", "Bravo", "Charlie"} {
			if commits[i].Message != want {
				t.Errorf("commit %d = %q, want %q", i, commits[i].Message, want)
			}
		}
	})

	t.Run("unchanged content commits once", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.SetEditLog("Same", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Same", "h", "", "one"),
			testutil.EditLogLine(1700000100, "00000002", "Same", "h", "", "two"),
		))
		f.source.AddRevision("Same", "00000001", "identical")
		f.source.AddRevision("Same", "00000002", "identical")

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if len(f.repo.Commits()) != 1 {
			t.Errorf("got %d commits, want 1", len(f.repo.Commits()))
		}
		if summary.Unchanged != 1 || summary.FailedRevisions != 0 {
			t.Errorf("summary = %+v, want 1 unchanged and no failures", *summary)
		}

		rec, err := f.ledger.FindRevision("Same", "00000002")
		if err != nil {
			t.Fatalf("FindRevision() error = %v", err)
		}
		if rec == nil || rec.Status != wiki.RevisionUnchanged || rec.CommitHash != "" {
			t.Errorf("ledger record = %+v, want unchanged without hash", rec)
		}
	})

	t.Run("re-run creates no commits", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.SetEditLog("Page", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Page", "h", "", "one"),
			testutil.EditLogLine(1700000100, "00000002", "Page", "h", "", "two"),
		))
		f.source.AddRevision("Page", "00000001", "a")
		f.source.AddRevision("Page", "00000002", "b")

		if _, err := f.service(wiki.MigrateOptions{RunID: "run-1"}).Migrate(context.Background()); err != nil {
			t.Fatalf("first Migrate() error = %v", err)
		}
		summary, err := f.service(wiki.MigrateOptions{RunID: "run-2"}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("second Migrate() error = %v", err)
		}

		if len(f.repo.Commits()) != 2 {
			t.Errorf("got %d commits after re-run, want 2", len(f.repo.Commits()))
		}
		if summary.Commits != 0 || summary.AlreadyImported != 2 {
			t.Errorf("re-run summary = %+v, want 0 commits and 2 already imported", *summary)
		}

		rec, err := f.ledger.FindRevision("Page", "00000001")
		if err != nil {
			t.Fatalf("FindRevision() error = %v", err)
		}
		if rec == nil || rec.RunID != "run-1" || rec.CommitHash == "" {
			t.Errorf("ledger record = %+v, want committed by run-1", rec)
		}
	})

	t.Run("commit failure is counted and replay continues", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.repo.FailFor["broken"] = errors.New("index locked")
		f.source.SetEditLog("Page", testutil.EditLog(
			testutil.EditLogLine(1700000000, "00000001", "Page", "h", "", "broken"),
			testutil.EditLogLine(1700000100, "00000002", "Page", "h", "", "fine"),
		))
		f.source.AddRevision("Page", "00000001", "a")
		f.source.AddRevision("Page", "00000002", "b")

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if summary.FailedRevisions != 1 || summary.Commits != 1 {
			t.Errorf("summary = %+v, want 1 failed and 1 commit", *summary)
		}

		rec, err := f.ledger.FindRevision("Page", "00000001")
		if err != nil {
			t.Fatalf("FindRevision() error = %v", err)
		}
		if rec != nil {
			t.Errorf("failed revision recorded in ledger: %+v", rec)
		}
	})

	t.Run("conversion error aborts", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.converter.Err = wiki.ErrRendererUnavailable
		f.source.SetEditLog("Page", testutil.EditLog(testutil.EditLogLine(1700000000, "00000001", "Page", "h", "", "c")))
		f.source.AddRevision("Page", "00000001", "a")

		_, err := f.service(wiki.MigrateOptions{Target: "rst"}).Migrate(context.Background())
		if !errors.Is(err, wiki.ErrRendererUnavailable) {
			t.Fatalf("Migrate() error = %v, want ErrRendererUnavailable", err)
		}
		if len(f.repo.Commits()) != 0 {
			t.Errorf("got %d commits after aborted run, want 0", len(f.repo.Commits()))
		}
	})

	t.Run("converter receives page context", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.converter.Prefix = "converted:"
		f.source.SetEditLog("Parent(2f)Child", testutil.EditLog(testutil.EditLogLine(1700000000, "00000001", "Parent/Child", "h", "", "c")))
		f.source.AddRevision("Parent(2f)Child", "00000001", "body")

		opts := wiki.MigrateOptions{Target: "markdown", Extension: "md", BaseDir: "/srv/wiki"}
		if _, err := f.service(opts).Migrate(context.Background()); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}

		reqs := f.converter.Requests()
		if len(reqs) != 1 {
			t.Fatalf("got %d conversion requests, want 1", len(reqs))
		}
		want := wiki.ConvertRequest{BaseDir: "/srv/wiki", PageName: "Parent/Child", Body: "body", Target: "markdown"}
		if reqs[0] != want {
			t.Errorf("request = %+v, want %+v", reqs[0], want)
		}
		content, ok := f.repo.File("Parent/Child.md")
		if !ok || string(content) != "converted:body" {
			t.Errorf("Parent/Child.md = %q, %v", content, ok)
		}
	})

	t.Run("page escaping the repository is skipped", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.SetEditLog("(2e2e)(2f)evil", testutil.EditLog(testutil.EditLogLine(1700000000, "00000001", "../evil", "h", "", "c")))
		f.source.AddRevision("(2e2e)(2f)evil", "00000001", "x")

		summary, err := f.service(wiki.MigrateOptions{}).Migrate(context.Background())
		if err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if len(f.repo.Commits()) != 0 || summary.PagesSkipped != 1 {
			t.Errorf("commits = %d, summary = %+v; want page skipped", len(f.repo.Commits()), *summary)
		}
	})

	t.Run("cancelled context stops the run", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.source.SetEditLog("Page", testutil.EditLog(testutil.EditLogLine(1700000000, "00000001", "Page", "h", "", "c")))
		f.source.AddRevision("Page", "00000001", "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := f.service(wiki.MigrateOptions{}).Migrate(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Migrate() error = %v, want context.Canceled", err)
		}
	})
}

func TestMigrationService_LoadRevisions(t *testing.T) {
	f := newServiceFixture(t)
	f.source.SetEditLog("Page", testutil.EditLog(
		testutil.EditLogLine(1700000000, "00000001", "Page", "h", "", "a"),
		"malformed",
		testutil.EditLogLine(1700000100, "00000003", "Page", "h", "", "missing body"),
	))
	f.source.AddRevision("Page", "00000001", "body")

	revs, err := f.service(wiki.MigrateOptions{}).LoadRevisions("Page")
	if err != nil {
		t.Fatalf("LoadRevisions() error = %v", err)
	}
	if len(revs) != 1 || revs[0].RevisionID != "00000001" || string(revs[0].Body) != "body" {
		t.Errorf("LoadRevisions() = %+v", revs)
	}

	none, err := f.service(wiki.MigrateOptions{}).LoadRevisions("Unknown")
	if err != nil {
		t.Fatalf("LoadRevisions(Unknown) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("LoadRevisions(Unknown) = %+v, want none", none)
	}
}
