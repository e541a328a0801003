package engine

// Kind identifies a command for transition lookup and logging.
type Kind string

const (
	KindCreate          Kind = "create"
	KindStart           Kind = "start"
	KindReview          Kind = "review"
	KindReopen          Kind = "reopen"
	KindComplete        Kind = "complete"
	KindMerge           Kind = "merge"
	KindCancel          Kind = "cancel"
	KindDelete          Kind = "delete"
	KindEditTitle       Kind = "edit-title"
	KindEditDescription Kind = "edit-description"
)

// Command is a request to change the board. Commands carry only the task
// they target and their own arguments; no UI state flows into the engine.
type Command interface {
	Kind() Kind
	// TaskID is the target task, empty for Create.
	TaskID() string
}

// Create adds a new To Do task.
type Create struct {
	Title       string
	Description string
}

func (Create) Kind() Kind     { return KindCreate }
func (Create) TaskID() string { return "" }

// Start provisions a branch and worktree for a To Do task.
type Start struct{ ID string }

func (Start) Kind() Kind       { return KindStart }
func (c Start) TaskID() string { return c.ID }

// Review moves an In Progress task to In Review.
type Review struct{ ID string }

func (Review) Kind() Kind       { return KindReview }
func (c Review) TaskID() string { return c.ID }

// Reopen moves an In Progress task back to To Do, keeping its resources.
type Reopen struct{ ID string }

func (Reopen) Kind() Kind       { return KindReopen }
func (c Reopen) TaskID() string { return c.ID }

// Complete marks a task Done and reclaims its worktree. The branch is kept.
type Complete struct{ ID string }

func (Complete) Kind() Kind       { return KindComplete }
func (c Complete) TaskID() string { return c.ID }

// Merge merges the task branch into its base branch and marks it Done.
type Merge struct{ ID string }

func (Merge) Kind() Kind       { return KindMerge }
func (c Merge) TaskID() string { return c.ID }

// Cancel abandons a task and discards its branch and worktree.
type Cancel struct{ ID string }

func (Cancel) Kind() Kind       { return KindCancel }
func (c Cancel) TaskID() string { return c.ID }

// Delete removes a task from the board, reclaiming its resources.
type Delete struct{ ID string }

func (Delete) Kind() Kind       { return KindDelete }
func (c Delete) TaskID() string { return c.ID }

// EditTitle renames a task.
type EditTitle struct {
	ID    string
	Title string
}

func (EditTitle) Kind() Kind       { return KindEditTitle }
func (c EditTitle) TaskID() string { return c.ID }

// EditDescription replaces a task's description.
type EditDescription struct {
	ID          string
	Description string
}

func (EditDescription) Kind() Kind       { return KindEditDescription }
func (c EditDescription) TaskID() string { return c.ID }
