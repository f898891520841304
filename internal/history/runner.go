package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a git command in workDir and returns its standard output.
// Tests substitute a fake; production code uses ExecRunner.
type Runner func(ctx context.Context, workDir string, args ...string) (string, error)

// ExecRunner runs git as a real subprocess. A non-zero exit is returned as an
// error carrying the command's stderr.
func ExecRunner(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("git %s exited with code %d: %s: %w",
				args[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()), err)
		}
		return string(out), fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
