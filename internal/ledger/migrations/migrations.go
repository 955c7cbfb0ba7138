// Package migrations holds the ledger schema as numbered SQL files and
// applies them with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

var (
	// ErrUnversioned means the ledger has never been migrated.
	ErrUnversioned = errors.New("ledger has no schema version, needs migration")
	// ErrDirty means an earlier migration stopped halfway.
	ErrDirty = errors.New("ledger schema is dirty")
)

// Versions returns the schema version stored in db and the newest version
// shipped with this binary.
func Versions(db *sql.DB) (stored, shipped uint, err error) {
	m, err := open(db)
	if err != nil {
		return 0, 0, err
	}
	// Closing m would close db too.

	stored, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, 0, ErrUnversioned
	case err != nil:
		return 0, 0, fmt.Errorf("reading ledger version: %w", err)
	case dirty:
		return stored, 0, fmt.Errorf("%w at version %d", ErrDirty, stored)
	}

	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return 0, 0, fmt.Errorf("loading schema files: %w", err)
	}
	defer src.Close()

	shipped, err = newest(src)
	if err != nil {
		return 0, 0, fmt.Errorf("finding newest schema version: %w", err)
	}
	return stored, shipped, nil
}

// CheckStatus fails unless db is at exactly the shipped schema version.
func CheckStatus(db *sql.DB) error {
	stored, shipped, err := Versions(db)
	if err != nil {
		return err
	}
	if stored < shipped {
		return fmt.Errorf("ledger schema %d is older than %d", stored, shipped)
	}
	if stored > shipped {
		return fmt.Errorf("ledger schema %d was written by a newer moin2git (this one knows %d)", stored, shipped)
	}
	return nil
}

// MigrateUp applies every schema file db has not seen yet.
func MigrateUp(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying ledger schema: %w", err)
	}
	return nil
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("loading schema files: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("wrapping ledger connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing ledger migration: %w", err)
	}
	return m, nil
}

// newest walks src to its last migration.
func newest(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}
