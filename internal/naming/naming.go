// Package naming derives task identifiers, slugs, branch names and worktree
// directory names.
package naming

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// IDLength is the number of characters in a generated task ID.
	IDLength = 7

	// MaxSlugLength caps slugs so branch and directory names stay readable.
	MaxSlugLength = 50

	// DefaultSlug is used when a title has no usable characters.
	DefaultSlug = "task"

	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// maxIDAttempts bounds collision retries in NewID.
	maxIDAttempts = 100
)

// ErrInvalidBranchName indicates a branch name failed validation.
var ErrInvalidBranchName = errors.New("invalid branch name")

var branchNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9/_.-]*$`)

// ShortID returns n random characters from [a-z0-9].
func ShortID(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("naming: read random bytes: %v", err))
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out)
}

// NewID returns a fresh ID for which exists reports false.
func NewID(exists func(string) bool) (string, error) {
	for range maxIDAttempts {
		id := ShortID(IDLength)
		if exists == nil || !exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique task id after %d attempts", maxIDAttempts)
}

// Slugify converts a title into a lowercase, dash-separated name that is
// safe for branches and directories.
func Slugify(title string) string {
	s := strings.ToLower(title)

	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	if s == "" {
		return DefaultSlug
	}
	return s
}

// BranchName returns the branch used for a task: <prefix>/task/<id>-<slug>.
func BranchName(prefix, id, slug string) string {
	return fmt.Sprintf("%s/task/%s-%s", prefix, id, slug)
}

// WorktreeDirName returns the worktree directory name: <prefix>-<id>-<slug>.
// Slashes in the prefix are flattened so the result is a single path element.
func WorktreeDirName(prefix, id, slug string) string {
	flat := strings.ReplaceAll(prefix, "/", "-")
	return fmt.Sprintf("%s-%s-%s", flat, id, slug)
}

// ValidateBranchName checks a derived branch name against the subset of
// git ref rules that a misconfigured prefix can violate.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidBranchName)
	}
	if !branchNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidBranchName, name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: cannot contain '..'", ErrInvalidBranchName)
	}
	if strings.Contains(name, "//") {
		return fmt.Errorf("%w: cannot contain '//'", ErrInvalidBranchName)
	}
	if strings.Contains(name, "/.") {
		return fmt.Errorf("%w: path components cannot start with '.'", ErrInvalidBranchName)
	}
	if strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, ".") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("%w: %q has an invalid suffix", ErrInvalidBranchName, name)
	}
	return nil
}
