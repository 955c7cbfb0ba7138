package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runCommand runs argv with stdin as input and returns stdout. Failures
// carry the trimmed stderr of the child.
func runCommand(cmd *exec.Cmd, stdin string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

func newCommand(ctx context.Context, argv []string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, argv[0], append(append([]string{}, argv[1:]...), args...)...)
}

// lookPath fails with sentinel when the program of argv cannot be found.
func lookPath(argv []string, sentinel error) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty command", sentinel)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return nil
}

// prependEnvPath returns env with dir prepended to the list variable key.
func prependEnvPath(env []string, key, dir string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	value := dir
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			if old := strings.TrimPrefix(kv, prefix); old != "" {
				value = dir + string(os.PathListSeparator) + old
			}
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}

func exitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
