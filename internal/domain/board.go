package domain

// BoardVersion is the board document schema version written by this build.
const BoardVersion = 1

// Board is the persisted aggregate of all tasks for one repository.
//
// Board values are treated as immutable: every helper returns a new Board and
// never writes through the receiver's task slice.
type Board struct {
	Version int    `json:"version"`
	Tasks   []Task `json:"tasks"`
}

// NewBoard returns an empty board at the current schema version.
func NewBoard() Board {
	return Board{Version: BoardVersion, Tasks: []Task{}}
}

// IndexOf returns the position of the task with the given ID, or -1.
func (b Board) IndexOf(id string) int {
	for i, t := range b.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// HasID reports whether a task with the given ID exists.
func (b Board) HasID(id string) bool {
	return b.IndexOf(id) >= 0
}

// Find returns the task with the given ID.
func (b Board) Find(id string) (Task, error) {
	i := b.IndexOf(id)
	if i < 0 {
		return Task{}, &TaskNotFoundError{ID: id}
	}
	return b.Tasks[i], nil
}

// Append returns a board with t added at the end.
func (b Board) Append(t Task) Board {
	tasks := make([]Task, 0, len(b.Tasks)+1)
	tasks = append(tasks, b.Tasks...)
	tasks = append(tasks, t)
	return Board{Version: b.Version, Tasks: tasks}
}

// WithTask returns a board where the task sharing t's ID is replaced by t.
// The board is returned unchanged if no such task exists.
func (b Board) WithTask(t Task) Board {
	tasks := make([]Task, len(b.Tasks))
	copy(tasks, b.Tasks)
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
		}
	}
	return Board{Version: b.Version, Tasks: tasks}
}

// Without returns a board with the task removed.
func (b Board) Without(id string) Board {
	tasks := make([]Task, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	return Board{Version: b.Version, Tasks: tasks}
}

// ByStatus groups tasks by status, preserving board order within a group.
func (b Board) ByStatus() map[Status][]Task {
	groups := make(map[Status][]Task, len(Statuses))
	for _, t := range b.Tasks {
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups
}
