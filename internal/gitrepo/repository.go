// Package gitrepo replays page revisions into a Git repository using go-git.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"moin2git/internal/wiki"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit describes one commit in the repository history.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Message     string
}

// Repository is a non-bare Git repository whose work tree receives page files.
type Repository struct {
	root     string
	repo     *git.Repository
	worktree *git.Worktree
}

var _ wiki.Repository = (*Repository)(nil)

// Open opens the repository at root, initializing it (and creating root)
// when it has no .git directory yet.
func Open(root string) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path: %w", err)
	}

	repo, err := git.PlainOpen(abs)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create repo dir: %w", err)
		}
		repo, err = git.PlainInit(abs, false)
		if err != nil {
			return nil, fmt.Errorf("init repo: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	return &Repository{root: abs, repo: repo, worktree: worktree}, nil
}

// Root returns the absolute path of the work tree.
func (r *Repository) Root() string {
	return r.root
}

// CommitFile overwrites the slash-separated file p with content, stages it
// and commits it with the given author and message. It returns
// wiki.ErrNothingToCommit when the content equals the version at HEAD.
func (r *Repository) CommitFile(p string, content []byte, author wiki.Signature, message string) (string, error) {
	p = path.Clean(p)
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path outside work tree: %q", p)
	}

	full := filepath.Join(r.root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create page dir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}

	unchanged, err := r.matchesHead(p, content)
	if err != nil {
		return "", err
	}
	if unchanged {
		return "", wiki.ErrNothingToCommit
	}

	if _, err := r.worktree.Add(p); err != nil {
		return "", fmt.Errorf("git add %s: %w", p, err)
	}

	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  author.When,
		},
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", wiki.ErrNothingToCommit
		}
		return "", fmt.Errorf("commit %s: %w", p, err)
	}
	return hash.String(), nil
}

// matchesHead reports whether HEAD already tracks p with exactly content.
func (r *Repository) matchesHead(p string, content []byte) (bool, error) {
	head, err := r.headCommit()
	if err != nil || head == nil {
		return false, err
	}

	file, err := head.File(p)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read %s at HEAD: %w", p, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return false, fmt.Errorf("read %s at HEAD: %w", p, err)
	}
	defer reader.Close()

	tracked, err := io.ReadAll(reader)
	if err != nil {
		return false, fmt.Errorf("read %s at HEAD: %w", p, err)
	}
	return bytes.Equal(tracked, content), nil
}

// headCommit returns nil on an unborn branch.
func (r *Repository) headCommit() (*object.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("load HEAD commit: %w", err)
	}
	return commit, nil
}

// History returns up to limit commits reachable from HEAD, newest first.
// A limit of zero returns all of them. An unborn branch has no history.
func (r *Repository) History(limit int) ([]Commit, error) {
	head, err := r.headCommit()
	if err != nil || head == nil {
		return nil, err
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var items []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		items = append(items, toCommit(c))
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// FileAt returns the contents of the slash-separated file p at commit hash.
func (r *Repository) FileAt(hash, p string) (string, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", hash, err)
	}
	file, err := c.File(p)
	if err != nil {
		return "", fmt.Errorf("read %s at %s: %w", p, hash, err)
	}
	return file.Contents()
}

func toCommit(c *object.Commit) Commit {
	return Commit{
		Hash:        c.Hash.String(),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		When:        c.Author.When,
		Message:     c.Message,
	}
}
