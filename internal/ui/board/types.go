package board

import "github.com/vibedove/vibedove/internal/domain"

// Column represents a kanban column with tasks
type Column struct {
	Title  string
	Status domain.Status
	Tasks  []domain.Task
}

// Cursor represents the current cursor position
type Cursor struct {
	Column int // Column index (0-4)
	Task   int // Task index within column
}

// BuildColumns groups tasks into one column per status in board order. The
// filter and sort are optional.
func BuildColumns(tasks []domain.Task, filter *domain.Filter, sort *domain.Sort) []Column {
	if filter != nil {
		tasks = filter.Apply(tasks)
	}
	if sort != nil {
		tasks = sort.Apply(tasks)
	}

	columns := make([]Column, len(domain.Statuses))
	for i, status := range domain.Statuses {
		columns[i] = Column{Title: status.String(), Status: status}
	}
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		col := t.Status.Column()
		columns[col].Tasks = append(columns[col].Tasks, t)
	}
	return columns
}
