package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"moin2git/internal/config"
)

// FileName is the ledger file name inside a repository's .git directory.
const FileName = "moin2git.db"

// NewLedgerFromConfig opens the ledger for the repository at repoPath.
//
// With type "sqlite" the ledger lives in <repo>/.git/moin2git.db, or in
// data_dir keyed by a hash of the absolute repository path when data_dir is set.
func NewLedgerFromConfig(cfg config.LedgerConfig, repoPath string) (*SQLiteLedger, error) {
	switch cfg.Type {
	case "sqlite", "":
		path, err := Location(cfg, repoPath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteLedger(path)
	case "memory":
		return NewSQLiteLedger(":memory:")
	default:
		return nil, fmt.Errorf("unknown ledger type: %s", cfg.Type)
	}
}

// Location returns the sqlite ledger path used for repoPath.
func Location(cfg config.LedgerConfig, repoPath string) (string, error) {
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return "", fmt.Errorf("resolving repository path: %w", err)
	}
	if cfg.DataDir == "" {
		return filepath.Join(absRepo, ".git", FileName), nil
	}
	sum := sha256.Sum256([]byte(absRepo))
	return filepath.Join(cfg.DataDir, hex.EncodeToString(sum[:8])+".db"), nil
}
