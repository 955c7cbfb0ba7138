package wiki

import (
	"errors"
	"time"
)

// ErrNothingToCommit is returned by Repository.CommitFile when the new
// content is identical to what the repository already tracks.
var ErrNothingToCommit = errors.New("nothing to commit")

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Repository is the version-control target of a migration.
type Repository interface {
	// CommitFile overwrites the file at the slash-separated path with
	// content, stages it and commits it. Parent directories are created.
	// It returns the new commit hash.
	CommitFile(path string, content []byte, author Signature, message string) (string, error)
}
