package engine

import "github.com/vibedove/vibedove/internal/domain"

type transitionKey struct {
	from domain.Status
	kind Kind
}

// transitions maps (current status, command) to the resulting status.
// Pairs missing from the table are rejected before any side effect runs.
var transitions = map[transitionKey]domain.Status{
	{domain.StatusTodo, KindStart}:        domain.StatusInProgress,
	{domain.StatusInProgress, KindReview}: domain.StatusInReview,
	{domain.StatusInProgress, KindReopen}: domain.StatusTodo,

	{domain.StatusTodo, KindComplete}:       domain.StatusDone,
	{domain.StatusInProgress, KindComplete}: domain.StatusDone,
	{domain.StatusInReview, KindComplete}:   domain.StatusDone,

	{domain.StatusInProgress, KindMerge}: domain.StatusDone,
	{domain.StatusInReview, KindMerge}:   domain.StatusDone,

	{domain.StatusTodo, KindCancel}:       domain.StatusCancelled,
	{domain.StatusInProgress, KindCancel}: domain.StatusCancelled,
	{domain.StatusInReview, KindCancel}:   domain.StatusCancelled,
}

// statusless commands apply to a task in any status and never change it.
var statusless = map[Kind]bool{
	KindDelete:          true,
	KindEditTitle:       true,
	KindEditDescription: true,
}

// Target returns the status a task in from reaches through kind, and
// whether the pair is allowed.
func Target(from domain.Status, kind Kind) (domain.Status, bool) {
	if statusless[kind] {
		return from, from.Valid()
	}
	to, ok := transitions[transitionKey{from, kind}]
	return to, ok
}

// Allowed lists the status-changing commands available from a status, in
// a stable order suitable for menus and hints.
func Allowed(from domain.Status) []Kind {
	order := []Kind{KindStart, KindReview, KindReopen, KindComplete, KindMerge, KindCancel}
	var kinds []Kind
	for _, k := range order {
		if _, ok := transitions[transitionKey{from, k}]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func checkTransition(t domain.Task, kind Kind) (domain.Status, error) {
	to, ok := Target(t.Status, kind)
	if !ok {
		return "", &domain.TransitionError{TaskID: t.ID, From: t.Status, Command: string(kind)}
	}
	return to, nil
}
