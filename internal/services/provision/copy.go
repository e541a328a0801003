// Package provision seeds new task worktrees with files from the repository
// root and runs the project's setup script inside them.
package provision

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrOutsideRepo is reported for copy entries that are absolute or climb
// out of the repository root.
var ErrOutsideRepo = errors.New("path is outside the repository")

// Failure records one copy entry that could not be copied.
type Failure struct {
	Entry string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Entry, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a CopyFiles run.
type Report struct {
	Copied   []string
	Failures []Failure
}

// OK reports whether every entry was copied.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Summary returns a one-line warning describing failed entries, or "".
func (r Report) Summary() string {
	if r.OK() {
		return ""
	}
	parts := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("copy failed for %d file(s): %s", len(r.Failures), strings.Join(parts, "; "))
}

// CopyFiles copies each repository-relative entry from repoRoot into the
// same relative location under worktree. Entries containing glob
// metacharacters are expanded, with ** matching across directories.
// Failures are collected per entry and never stop the remaining copies.
func CopyFiles(repoRoot, worktree string, entries []string) Report {
	var report Report
	repoFS := os.DirFS(repoRoot)

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !filepath.IsLocal(entry) {
			report.Failures = append(report.Failures, Failure{Entry: entry, Err: ErrOutsideRepo})
			continue
		}

		if !isGlob(entry) {
			report.copyEntry(repoRoot, worktree, filepath.Clean(entry))
			continue
		}

		matches, err := doublestar.Glob(repoFS, filepath.ToSlash(entry))
		if err != nil {
			report.Failures = append(report.Failures, Failure{Entry: entry, Err: err})
			continue
		}
		if len(matches) == 0 {
			report.Failures = append(report.Failures, Failure{Entry: entry, Err: errors.New("no files match")})
			continue
		}
		for _, match := range matches {
			report.copyEntry(repoRoot, worktree, filepath.FromSlash(match))
		}
	}

	return report
}

func (r *Report) copyEntry(repoRoot, worktree, rel string) {
	errs := CopyRecursive(filepath.Join(repoRoot, rel), filepath.Join(worktree, rel))
	if len(errs) == 0 {
		r.Copied = append(r.Copied, rel)
		return
	}
	for _, err := range errs {
		r.Failures = append(r.Failures, Failure{Entry: rel, Err: err})
	}
}

func isGlob(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

// CopyRecursive copies src to dest. Directories are copied recursively,
// symlinks are recreated and file modes are preserved. Errors are collected
// per entry; a failing file does not stop its siblings.
func CopyRecursive(src, dest string) []error {
	info, err := os.Lstat(src)
	if err != nil {
		return []error{err}
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		if err := copySymlink(src, dest); err != nil {
			return []error{err}
		}
		return nil

	case info.IsDir():
		if err := os.MkdirAll(dest, info.Mode().Perm()|0o700); err != nil {
			return []error{err}
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return []error{err}
		}
		var errs []error
		for _, entry := range entries {
			errs = append(errs, CopyRecursive(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name()))...)
		}
		return errs

	default:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return []error{err}
		}
		if err := copyFile(src, dest, info.Mode().Perm()); err != nil {
			return []error{err}
		}
		return nil
	}
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, mode)
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Symlink(target, dst)
}
