// Package navigation keeps the board cursor.
//
// The cursor follows a task by ID, so it survives reloads, filtering and
// sorting. When the task disappears (deleted, filtered out, moved by another
// process) the cursor lands on the same row of the column it was last seen
// in, clamped to that column's length.
package navigation

import (
	"github.com/vibedove/vibedove/internal/domain"
	"github.com/vibedove/vibedove/internal/ui/board"
)

// Position is a resolved cursor location. Valid is false when the column
// it points at is empty.
type Position struct {
	Column int
	Row    int
	Valid  bool
}

// Cursor is the persistent cursor state.
type Cursor struct {
	TaskID string
	Column int
	Row    int
}

// Locate resolves the cursor against columns.
func (c Cursor) Locate(columns []board.Column) Position {
	if len(columns) == 0 {
		return Position{}
	}
	if c.TaskID != "" {
		for col, column := range columns {
			for row, t := range column.Tasks {
				if t.ID == c.TaskID {
					return Position{Column: col, Row: row, Valid: true}
				}
			}
		}
	}

	col := clamp(c.Column, 0, len(columns)-1)
	n := len(columns[col].Tasks)
	if n == 0 {
		return Position{Column: col}
	}
	return Position{Column: col, Row: clamp(c.Row, 0, n-1), Valid: true}
}

// Service manages navigation state
type Service struct {
	cursor Cursor
}

// NewService creates a new navigation service
func NewService() *Service {
	return &Service{}
}

// Cursor returns a copy of the cursor state.
func (s *Service) Cursor() Cursor {
	return s.cursor
}

// Position resolves the cursor against columns.
func (s *Service) Position(columns []board.Column) Position {
	return s.locate(columns)
}

// locate resolves the cursor and, when its task is visible, records where
// it was found for use after the task goes away.
func (s *Service) locate(columns []board.Column) Position {
	pos := s.cursor.Locate(columns)
	if pos.Valid && columns[pos.Column].Tasks[pos.Row].ID == s.cursor.TaskID {
		s.cursor.Column, s.cursor.Row = pos.Column, pos.Row
	}
	return pos
}

// CurrentTask returns the task under the cursor, or nil.
func (s *Service) CurrentTask(columns []board.Column) *domain.Task {
	pos := s.locate(columns)
	if !pos.Valid {
		return nil
	}
	t := columns[pos.Column].Tasks[pos.Row]
	return &t
}

// Board returns the cursor in the form the board renderer expects. Row is -1
// when the current column is empty.
func (s *Service) Board(columns []board.Column) board.Cursor {
	pos := s.locate(columns)
	if !pos.Valid {
		return board.Cursor{Column: pos.Column, Task: -1}
	}
	return board.Cursor{Column: pos.Column, Task: pos.Row}
}

// SelectTask points the cursor at taskID. column is where to fall back to if
// the task is not visible.
func (s *Service) SelectTask(taskID string, column int) {
	s.cursor.TaskID = taskID
	s.cursor.Column = column
}

func (s *Service) MoveDown(columns []board.Column)  { s.moveRow(columns, 1) }
func (s *Service) MoveUp(columns []board.Column)    { s.moveRow(columns, -1) }
func (s *Service) MoveLeft(columns []board.Column)  { s.moveColumn(columns, -1) }
func (s *Service) MoveRight(columns []board.Column) { s.moveColumn(columns, 1) }

func (s *Service) HalfPageDown(columns []board.Column, halfPage int) { s.moveRow(columns, halfPage) }
func (s *Service) HalfPageUp(columns []board.Column, halfPage int)   { s.moveRow(columns, -halfPage) }

// GotoTop moves to the first task of the current column.
func (s *Service) GotoTop(columns []board.Column) {
	pos := s.locate(columns)
	s.place(columns, pos.Column, 0)
}

// GotoBottom moves to the last task of the current column.
func (s *Service) GotoBottom(columns []board.Column) {
	pos := s.locate(columns)
	if len(columns) > 0 {
		s.place(columns, pos.Column, len(columns[pos.Column].Tasks)-1)
	}
}

// GotoFirstColumn jumps to the first column, keeping the row.
func (s *Service) GotoFirstColumn(columns []board.Column) {
	s.moveColumn(columns, -len(columns))
}

// GotoLastColumn jumps to the last column, keeping the row.
func (s *Service) GotoLastColumn(columns []board.Column) {
	s.moveColumn(columns, len(columns))
}

// JumpToTask selects taskID if it is visible.
func (s *Service) JumpToTask(columns []board.Column, taskID string) bool {
	want := Cursor{TaskID: taskID}
	pos := want.Locate(columns)
	if !pos.Valid || columns[pos.Column].Tasks[pos.Row].ID != taskID {
		return false
	}
	s.place(columns, pos.Column, pos.Row)
	return true
}

func (s *Service) moveRow(columns []board.Column, delta int) {
	pos := s.locate(columns)
	if !pos.Valid {
		return
	}
	s.place(columns, pos.Column, pos.Row+delta)
}

func (s *Service) moveColumn(columns []board.Column, delta int) {
	if len(columns) == 0 {
		return
	}
	pos := s.locate(columns)
	s.place(columns, clamp(pos.Column+delta, 0, len(columns)-1), pos.Row)
}

// place selects the task at (col, row), clamping row to the column. An
// empty column clears the task but remembers the row.
func (s *Service) place(columns []board.Column, col, row int) {
	tasks := columns[col].Tasks
	s.cursor.Column = col
	if len(tasks) == 0 {
		s.cursor.TaskID = ""
		s.cursor.Row = max(row, 0)
		return
	}
	row = clamp(row, 0, len(tasks)-1)
	s.cursor.TaskID = tasks[row].ID
	s.cursor.Row = row
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
