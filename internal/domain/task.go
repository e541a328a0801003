package domain

import "time"

// Task is one unit of work on the board. JSON field names match the board
// document on disk.
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Branch       string    `json:"branch,omitempty"`
	WorktreePath string    `json:"worktreePath,omitempty"`
	BaseBranch   string    `json:"baseBranch,omitempty"`
}

// HasWorktree reports whether a provisioned worktree is recorded for the task.
func (t Task) HasWorktree() bool {
	return t.WorktreePath != ""
}

// HasBranch reports whether a git branch is recorded for the task.
func (t Task) HasBranch() bool {
	return t.Branch != ""
}

// Touch returns a copy of the task with UpdatedAt set to now.
func (t Task) Touch(now time.Time) Task {
	t.UpdatedAt = now.UTC()
	return t
}

// Status represents task status
type Status string

const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusDone       Status = "Done"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every status in board column order.
var Statuses = []Status{
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusCancelled,
}

// Column returns the kanban column index for this status
func (s Status) Column() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusInReview:
		return 2
	case StatusDone:
		return 3
	case StatusCancelled:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// String returns the display string
func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts a display name ("In Progress") or a short form
// ("in-progress", "progress", "todo", "review", "done", "cancelled").
func ParseStatus(v string) (Status, bool) {
	switch normalizeStatus(v) {
	case "todo":
		return StatusTodo, true
	case "inprogress", "progress", "wip":
		return StatusInProgress, true
	case "inreview", "review":
		return StatusInReview, true
	case "done":
		return StatusDone, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	}
	return "", false
}

func normalizeStatus(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		}
	}
	return string(out)
}
