package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes git commands in a directory and returns their
// trimmed stdout. Failures are reported as *CommandError.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	Dir      string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Output returns stdout and stderr joined, the way a terminal would show them.
func (e *CommandError) Output() string {
	switch {
	case e.Stdout == "":
		return e.Stderr
	case e.Stderr == "":
		return e.Stdout
	}
	return e.Stdout + "\n" + e.Stderr
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	binary string
}

// NewExecRunner creates a new ExecRunner that invokes git from PATH.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{binary: "git"}
}

// Run executes a git command with the given arguments in dir.
func (e *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return out, &CommandError{
			Args:     args,
			Dir:      dir,
			Stdout:   out,
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: exitCode,
			Err:      err,
		}
	}

	return out, nil
}
