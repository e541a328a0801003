package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyTitle        = errors.New("title must not be empty")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPrecondition      = errors.New("precondition failed")
	ErrUserCanceled      = errors.New("user canceled")
)

// TaskNotFoundError is returned when a command names an unknown task.
type TaskNotFoundError struct {
	ID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

func (e *TaskNotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransitionError is returned when a command is not allowed from the
// task's current status. No side effects have run when it is returned.
type TransitionError struct {
	TaskID  string
	From    Status
	Command string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s task %s from %q", e.Command, e.TaskID, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition || target == ErrPrecondition
}

// PreconditionError is returned when a task lacks data a command requires.
type PreconditionError struct {
	TaskID string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("task %s: %s", e.TaskID, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// GitError represents an error from git operations
type GitError struct {
	Op  string
	Dir string
	Err error
}

func (e *GitError) Error() string {
	if e.Dir != "" {
		return fmt.Sprintf("git %s [%s]: %v", e.Op, e.Dir, e.Err)
	}
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// MergeError is returned when merging a task branch fails. The merge has
// been aborted and the original branch restored by the time it is returned.
type MergeError struct {
	Base      string
	Head      string
	Conflicts []string
	Output    string
	Err       error
}

func (e *MergeError) Error() string {
	if len(e.Conflicts) > 0 {
		return fmt.Sprintf("merge %s into %s: conflicts in %s", e.Head, e.Base, strings.Join(e.Conflicts, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("merge %s into %s: %v", e.Head, e.Base, e.Err)
	}
	return fmt.Sprintf("merge %s into %s failed", e.Head, e.Base)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
