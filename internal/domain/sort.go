package domain

import (
	"sort"
	"strings"
)

// SortField represents a field to sort by
type SortField string

const (
	SortByBoard   SortField = "board"
	SortByCreated SortField = "created"
	SortByUpdated SortField = "updated"
	SortByTitle   SortField = "title"
)

// ParseSortField returns the SortField named by v.
func ParseSortField(v string) (SortField, bool) {
	switch f := SortField(strings.ToLower(v)); f {
	case SortByBoard, SortByCreated, SortByUpdated, SortByTitle:
		return f, true
	case "":
		return SortByBoard, true
	}
	return "", false
}

// SortOrder represents sort direction
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// Sort represents sorting state
type Sort struct {
	Field SortField
	Order SortOrder
}

// Toggle toggles the sort field or direction
// If field is different, sets new field with ascending order
// If field is same, toggles between ascending and descending
func (s *Sort) Toggle(field SortField) {
	if s.Field == field {
		if s.Order == SortAsc {
			s.Order = SortDesc
		} else {
			s.Order = SortAsc
		}
	} else {
		s.Field = field
		s.Order = SortAsc
	}
}

// Apply sorts a list of tasks. SortByBoard keeps insertion order.
func (s *Sort) Apply(tasks []Task) []Task {
	if len(tasks) == 0 {
		return tasks
	}

	// Make a copy to avoid modifying the input slice
	result := make([]Task, len(tasks))
	copy(result, tasks)

	switch s.Field {
	case SortByCreated:
		sort.SliceStable(result, func(i, j int) bool {
			if s.Order == SortAsc {
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			}
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})

	case SortByUpdated:
		sort.SliceStable(result, func(i, j int) bool {
			if s.Order == SortAsc {
				return result[i].UpdatedAt.Before(result[j].UpdatedAt)
			}
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		})

	case SortByTitle:
		sort.SliceStable(result, func(i, j int) bool {
			ti, tj := strings.ToLower(result[i].Title), strings.ToLower(result[j].Title)
			if s.Order == SortAsc {
				return ti < tj
			}
			return ti > tj
		})

	default:
		if s.Order == SortDesc {
			for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result
}
