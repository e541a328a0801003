package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SetupError is returned when the setup script exits unsuccessfully.
type SetupError struct {
	Script string
	Output string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("setup script %q failed: %v: %s", e.Script, e.Err, lastLines(e.Output, 5))
	}
	return fmt.Sprintf("setup script %q failed: %v", e.Script, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Provisioner seeds worktrees: it copies configured files and runs the
// setup script through the platform shell.
type Provisioner struct {
	shell  []string
	logger *slog.Logger
}

// New creates a Provisioner using sh -c (cmd /C on Windows).
func New(logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	shell := []string{"sh", "-c"}
	if runtime.GOOS == "windows" {
		shell = []string{"cmd", "/C"}
	}
	return &Provisioner{shell: shell, logger: logger}
}

// CopyFiles copies entries from repoRoot into worktree. See CopyFiles.
func (r *Provisioner) CopyFiles(repoRoot, worktree string, entries []string) Report {
	report := CopyFiles(repoRoot, worktree, entries)
	r.logger.Info("copied files into worktree",
		"worktree", worktree,
		"copied", len(report.Copied),
		"failed", len(report.Failures),
	)
	return report
}

// RunSetup executes script with dir as working directory and returns its
// combined output. env entries (KEY=value) are appended to the current
// environment. A blank script is a no-op.
func (r *Provisioner) RunSetup(ctx context.Context, script, dir string, env ...string) (string, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return "", nil
	}

	r.logger.Info("running setup script", "script", script, "dir", dir)

	args := append(append([]string{}, r.shell[1:]...), script)
	cmd := exec.CommandContext(ctx, r.shell[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		r.logger.Warn("setup script failed", "script", script, "error", err)
		return output, &SetupError{Script: script, Output: output, Err: err}
	}

	r.logger.Debug("setup script finished", "script", script, "outputBytes", len(out))
	return output, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
