package convert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"moin2git/internal/wiki"
)

// DefaultPandocCommand is the pandoc binary looked up on PATH.
const DefaultPandocCommand = "pandoc"

// PandocConverter converts documents by piping them through pandoc.
type PandocConverter struct {
	argv []string
}

var _ DocumentConverter = (*PandocConverter)(nil)

// NewPandocConverter creates a PandocConverter from a whitespace-separated command line.
func NewPandocConverter(command string) *PandocConverter {
	if command == "" {
		command = DefaultPandocCommand
	}
	return &PandocConverter{argv: strings.Fields(command)}
}

// Supports reports true for any pair of distinct formats; pandoc itself
// rejects the ones it does not know.
func (p *PandocConverter) Supports(from, to string) bool {
	return from != "" && to != "" && from != to
}

func (p *PandocConverter) Available() error {
	return lookPath(p.argv, wiki.ErrConverterUnavailable)
}

func (p *PandocConverter) Convert(ctx context.Context, from, to, text string) (string, error) {
	if len(p.argv) == 0 {
		return "", fmt.Errorf("%w: empty command", wiki.ErrConverterUnavailable)
	}
	cmd := newCommand(ctx, p.argv, "-f", from, "-t", to)
	out, err := runCommand(cmd, text)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", wiki.ErrConverterUnavailable, err)
		}
		return "", fmt.Errorf("pandoc: %w", err)
	}
	return out, nil
}
