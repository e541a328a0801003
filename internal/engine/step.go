package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// Outcome classifies how a side-effecting step ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeWarning
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeWarning:
		return "warning"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// StepResult is the outcome of one side-effecting step.
type StepResult struct {
	Outcome Outcome
	Note    string
	Err     error
}

// Ok reports a step that succeeded.
func Ok() StepResult { return StepResult{Outcome: OutcomeOK} }

// Warning reports a step that failed without blocking the transition.
func Warning(note string) StepResult { return StepResult{Outcome: OutcomeWarning, Note: note} }

// Fatal reports a step whose failure aborts the transition.
func Fatal(err error) StepResult { return StepResult{Outcome: OutcomeFatal, Err: err} }

// Policy declares what a step failure does to the transition.
type Policy int

const (
	// Blocking failures abort the transition; the board is not saved.
	Blocking Policy = iota
	// Advisory failures become notes on the result.
	Advisory
)

type step struct {
	name   string
	policy Policy
	run    func(ctx context.Context) error
	// note renders an advisory failure. Defaults to "<name> failed: <err>".
	note func(err error) string
}

func (s step) exec(ctx context.Context) StepResult {
	err := s.run(ctx)
	if err == nil {
		return Ok()
	}
	if s.policy == Blocking {
		return Fatal(err)
	}
	if s.note != nil {
		return Warning(s.note(err))
	}
	return Warning(fmt.Sprintf("%s failed: %v", s.name, err))
}

// runSteps executes steps in order. It stops at the first Fatal result and
// returns its error; otherwise it returns the notes of every Warning.
func runSteps(ctx context.Context, logger *slog.Logger, steps []step) ([]string, error) {
	var notes []string
	for _, s := range steps {
		res := s.exec(ctx)
		switch res.Outcome {
		case OutcomeFatal:
			logger.Error("step failed", "step", s.name, "error", res.Err)
			return notes, res.Err
		case OutcomeWarning:
			logger.Warn("step failed", "step", s.name, "note", res.Note)
			notes = append(notes, res.Note)
		default:
			logger.Debug("step done", "step", s.name)
		}
	}
	return notes, nil
}
