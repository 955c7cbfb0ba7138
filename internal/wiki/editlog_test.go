package wiki_test

import (
	"strings"
	"testing"

	"moin2git/internal/testutil"
	"moin2git/internal/wiki"
)

func TestParseEditLog(t *testing.T) {
	t.Run("keeps nine field lines in log order", func(t *testing.T) {
		t.Parallel()
		log := testutil.EditLog(
			testutil.EditLogLine(1700000500, "00000002", "FrontPage", "10.0.0.2", "1234.5.6", "second"),
			testutil.EditLogLine(1700000000, "00000001", "FrontPage", "10.0.0.1", "", "first"),
		)

		got := wiki.ParseEditLog(log)
		if len(got) != 2 {
			t.Fatalf("got %d descriptors, want 2", len(got))
		}
		if got[0].RevisionID != "00000002" || got[1].RevisionID != "00000001" {
			t.Errorf("order = %s, %s; want log order 00000002, 00000001", got[0].RevisionID, got[1].RevisionID)
		}
		if got[0].Timestamp != 1700000500 {
			t.Errorf("Timestamp = %d, want 1700000500", got[0].Timestamp)
		}
		if got[0].AuthorID != "1234.5.6" || got[0].AuthorToken != "10.0.0.2" || got[0].Comment != "second" {
			t.Errorf("descriptor = %+v", got[0])
		}
		if got[1].AuthorID != "" {
			t.Errorf("anonymous AuthorID = %q, want empty", got[1].AuthorID)
		}
	})

	t.Run("drops malformed lines", func(t *testing.T) {
		t.Parallel()
		good := testutil.EditLogLine(1700000000, "00000001", "P", "h", "u", "ok")
		lines := []string{
			"only\tthree\tfields",
			good,
			good + "\textra",
			"",
			"garbage",
			strings.Replace(good, "1700000000000000", "notanumber0000", 1),
			"123\t00000009\tSAVE\tP\th\th\tu\t\tshort timestamp",
		}

		got := wiki.ParseEditLog(strings.Join(lines, "\n"))
		if len(got) != 1 {
			t.Fatalf("got %d descriptors, want 1: %+v", len(got), got)
		}
		if got[0].RevisionID != "00000001" {
			t.Errorf("RevisionID = %q, want 00000001", got[0].RevisionID)
		}
	})

	t.Run("trims carriage return from comment", func(t *testing.T) {
		t.Parallel()
		line := testutil.EditLogLine(1700000000, "00000001", "P", "h", "u", "windows") + "\r"

		got := wiki.ParseEditLog(line)
		if len(got) != 1 || got[0].Comment != "windows" {
			t.Errorf("ParseEditLog() = %+v, want one entry with comment %q", got, "windows")
		}
	})

	t.Run("empty comment kept", func(t *testing.T) {
		t.Parallel()
		got := wiki.ParseEditLog(testutil.EditLogLine(1700000000, "00000001", "P", "h", "u", ""))
		if len(got) != 1 || got[0].Comment != "" {
			t.Errorf("ParseEditLog() = %+v, want one entry with empty comment", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		if got := wiki.ParseEditLog(""); len(got) != 0 {
			t.Errorf("ParseEditLog(\"\") = %+v, want none", got)
		}
	})
}

func TestRevisionDescriptor_Time(t *testing.T) {
	d := wiki.RevisionDescriptor{Timestamp: 1700000000}
	if d.Time().Unix() != 1700000000 {
		t.Errorf("Time().Unix() = %d, want 1700000000", d.Time().Unix())
	}
}
