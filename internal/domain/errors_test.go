package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransitionError(t *testing.T) {
	err := &TransitionError{TaskID: "abc1234", From: StatusDone, Command: "start"}

	if got, want := err.Error(), `cannot start task abc1234 from "Done"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Error("TransitionError should match ErrInvalidTransition")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), ErrPrecondition) {
		t.Error("wrapped TransitionError should match ErrPrecondition")
	}
}

func TestPreconditionError(t *testing.T) {
	err := &PreconditionError{TaskID: "abc1234", Reason: "no base branch recorded"}

	if got, want := err.Error(), "task abc1234: no base branch recorded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrPrecondition) {
		t.Error("PreconditionError should match ErrPrecondition")
	}
	if errors.Is(err, ErrInvalidTransition) {
		t.Error("PreconditionError should not match ErrInvalidTransition")
	}
}

func TestGitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  GitError
		want string
	}{
		{
			name: "with dir",
			err:  GitError{Op: "branch", Dir: "/repo", Err: errors.New("exit 128")},
			want: "git branch [/repo]: exit 128",
		},
		{
			name: "without dir",
			err:  GitError{Op: "checkout", Err: errors.New("boom")},
			want: "git checkout: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("GitError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeError(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := &MergeError{Base: "main", Head: "vd/task/abc1234-x", Conflicts: []string{"a.go", "b.go"}, Err: underlying}

	if got, want := err.Error(), "merge vd/task/abc1234-x into main: conflicts in a.go, b.go"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, underlying) {
		t.Error("MergeError should unwrap to the underlying error")
	}
}

func TestTaskNotFoundError(t *testing.T) {
	err := &TaskNotFoundError{ID: "nope123"}
	if !errors.Is(err, ErrNotFound) {
		t.Error("TaskNotFoundError should match ErrNotFound")
	}
}
