package domain

import (
	"fmt"
	"strings"
	"time"
)

// AgeSteps are the "updated within" windows the age filter cycles through.
// Zero means no age limit.
var AgeSteps = []int{0, 1, 7, 30}

// Filter is the board's view filter. Facets combine with AND; statuses
// within the Status facet combine with OR.
type Filter struct {
	Status      map[Status]bool
	HasWorktree bool
	AgeMaxDays  *int
	SearchQuery string

	// Now is the clock for the age facet; nil means time.Now.
	Now func() time.Time
}

// NewFilter creates a new empty filter
func NewFilter() *Filter {
	return &Filter{Status: make(map[Status]bool)}
}

// IsActive returns true if any filter is active
func (f *Filter) IsActive() bool {
	return len(f.Status) > 0 || f.HasWorktree || f.AgeMaxDays != nil || f.SearchQuery != ""
}

// Apply returns the tasks that pass the filter, in their original order.
func (f *Filter) Apply(tasks []Task) []Task {
	if !f.IsActive() {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t passes every active facet.
func (f *Filter) Matches(t Task) bool {
	switch {
	case len(f.Status) > 0 && !f.Status[t.Status]:
		return false
	case f.HasWorktree && !t.HasWorktree():
		return false
	case f.AgeMaxDays != nil && daysBetween(t.UpdatedAt, f.now()) > *f.AgeMaxDays:
		return false
	}
	return f.SearchQuery == "" || matchesQuery(t, f.SearchQuery)
}

// matchesQuery does a case-insensitive substring match on title, ID and
// branch.
func matchesQuery(t Task, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{t.Title, t.ID, t.Branch} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// daysBetween counts calendar-day boundaries from then to now in UTC.
func daysBetween(then, now time.Time) int {
	const day = 24 * time.Hour
	return int(now.UTC().Truncate(day).Sub(then.UTC().Truncate(day)) / day)
}

func (f *Filter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Clear resets all filters
func (f *Filter) Clear() {
	f.ClearFacets()
	f.SearchQuery = ""
}

// ClearFacets resets everything except the search query.
func (f *Filter) ClearFacets() {
	f.Status = make(map[Status]bool)
	f.HasWorktree = false
	f.AgeMaxDays = nil
}

// ToggleStatus toggles a status filter
func (f *Filter) ToggleStatus(s Status) {
	if f.Status == nil {
		f.Status = make(map[Status]bool)
	}
	if f.Status[s] {
		delete(f.Status, s)
		return
	}
	f.Status[s] = true
}

// CycleAge advances the age facet to the next window in AgeSteps, wrapping
// back to no limit. An unknown current value restarts the cycle.
func (f *Filter) CycleAge() {
	current := 0
	if f.AgeMaxDays != nil {
		current = *f.AgeMaxDays
	}
	next := AgeSteps[0]
	for i, days := range AgeSteps {
		if days == current {
			next = AgeSteps[(i+1)%len(AgeSteps)]
			break
		}
	}
	if next == 0 {
		f.AgeMaxDays = nil
		return
	}
	f.AgeMaxDays = &next
}

// Summary describes the active facets other than search, in board order,
// e.g. "In Progress,In Review +wt ≤7d". Empty when none are active.
func (f *Filter) Summary() string {
	var parts []string
	var statuses []string
	for _, s := range Statuses {
		if f.Status[s] {
			statuses = append(statuses, s.String())
		}
	}
	if len(statuses) > 0 {
		parts = append(parts, strings.Join(statuses, ","))
	}
	if f.HasWorktree {
		parts = append(parts, "+wt")
	}
	if f.AgeMaxDays != nil {
		parts = append(parts, fmt.Sprintf("≤%dd", *f.AgeMaxDays))
	}
	return strings.Join(parts, " ")
}
