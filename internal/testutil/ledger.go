package testutil

import (
	"testing"

	"moin2git/internal/ledger"
)

// NewTestLedger creates a new in-memory SQLite ledger with schema applied.
// The ledger is automatically closed when the test completes.
func NewTestLedger(t *testing.T) *ledger.SQLiteLedger {
	t.Helper()

	l, err := ledger.NewSQLiteLedger(":memory:")
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}

	t.Cleanup(func() {
		l.Close()
	})

	return l
}
