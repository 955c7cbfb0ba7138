package convert

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"moin2git/internal/wiki"
)

const (
	// DefaultInterpreter runs the bundled rendering helper.
	DefaultInterpreter = "python2"
	// DefaultRendererFormat is the format the helper renders to.
	DefaultRendererFormat = "rst"

	// Helper exit statuses.
	exitPageNotFound = 3
	exitUnavailable  = 4
)

// helperSource is the bundled MoinMoin rendering helper. It is handed to
// the interpreter with -c, so nothing has to be installed next to the wiki.
//
//go:embed moin2git_render.py
var helperSource string

// MoinRenderer renders revisions with the wiki's own formatter by running
// a helper program inside the wiki instance directory.
//
// The helper is invoked as "<argv> --page <name> --format <format>",
// reads the revision body on stdin and writes the rendered text to stdout.
// "<argv> --check --format <format>" only loads MoinMoin and the formatter.
type MoinRenderer struct {
	argv   []string
	format string
}

var _ Renderer = (*MoinRenderer)(nil)

// NewMoinRenderer creates a MoinRenderer. An empty command runs the bundled
// helper with interpreter; otherwise command is a whitespace-separated
// command line of a helper speaking the same protocol.
func NewMoinRenderer(interpreter, command, format string) (*MoinRenderer, error) {
	if format == "" {
		format = DefaultRendererFormat
	}
	if command == "" {
		if interpreter == "" {
			interpreter = DefaultInterpreter
		}
		return &MoinRenderer{argv: []string{interpreter, "-c", helperSource}, format: format}, nil
	}
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("invalid renderer command %q", command)
	}
	return &MoinRenderer{argv: argv, format: format}, nil
}

func (r *MoinRenderer) Format() string {
	return r.format
}

func (r *MoinRenderer) Available() error {
	return lookPath(r.argv, wiki.ErrRendererUnavailable)
}

// Verify runs the helper in check mode inside baseDir. Any failure to load
// MoinMoin or the formatter means the renderer is unavailable.
func (r *MoinRenderer) Verify(ctx context.Context, baseDir string) error {
	if err := r.Available(); err != nil {
		return err
	}
	cmd := r.command(ctx, baseDir, "--check", "--format", r.format)
	if _, err := runCommand(cmd, ""); err != nil {
		return fmt.Errorf("%w: %v", wiki.ErrRendererUnavailable, err)
	}
	return nil
}

// Render runs the helper with its working directory set to req.BaseDir and
// req.BaseDir prepended to its PYTHONPATH. The calling process's working
// directory and environment are left alone.
func (r *MoinRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	cmd := r.command(ctx, req.BaseDir, "--page", req.PageName, "--format", r.format)

	out, err := runCommand(cmd, req.Body)
	if err != nil {
		if code, ok := exitCode(err); ok {
			switch code {
			case exitPageNotFound:
				return "", fmt.Errorf("%w: %s", wiki.ErrPageNotFound, req.PageName)
			case exitUnavailable:
				return "", fmt.Errorf("%w: %v", wiki.ErrRendererUnavailable, err)
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", wiki.ErrRendererUnavailable, err)
		}
		return "", fmt.Errorf("rendering %s: %w", req.PageName, err)
	}
	return out, nil
}

func (r *MoinRenderer) command(ctx context.Context, baseDir string, args ...string) *exec.Cmd {
	cmd := newCommand(ctx, r.argv, args...)
	if baseDir != "" {
		cmd.Dir = baseDir
		cmd.Env = prependEnvPath(cmd.Environ(), "PYTHONPATH", baseDir)
	}
	return cmd
}
