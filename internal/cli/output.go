package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vibedove/vibedove/internal/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// taskView is the machine-readable shape of a task.
type taskView struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status       string    `json:"status" yaml:"status"`
	Branch       string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	BaseBranch   string    `json:"baseBranch,omitempty" yaml:"baseBranch,omitempty"`
	WorktreePath string    `json:"worktreePath,omitempty" yaml:"worktreePath,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func viewOf(t domain.Task) taskView {
	return taskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status.String(),
		Branch:       t.Branch,
		BaseBranch:   t.BaseBranch,
		WorktreePath: t.WorktreePath,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func printTasks(w io.Writer, format string, tasks []domain.Task) error {
	if format != outputTable {
		views := make([]taskView, len(tasks))
		for i, t := range tasks {
			views[i] = viewOf(t)
		}
		return encode(w, format, views)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, `No tasks found. Create one with: vd new "Your task"`)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tBRANCH\tTITLE")
	fmt.Fprintln(tw, "──\t──────\t──────\t─────")
	for _, t := range tasks {
		branch := t.Branch
		if branch == "" {
			branch = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Status, branch, truncate(t.Title, 50))
	}
	return tw.Flush()
}

func printTask(w io.Writer, format string, t domain.Task) error {
	if format != outputTable {
		return encode(w, format, viewOf(t))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s:\t%s\n", label, value)
	}
	row("ID", t.ID)
	row("Title", t.Title)
	row("Status", t.Status.String())
	row("Branch", t.Branch)
	row("Base", t.BaseBranch)
	row("Worktree", t.WorktreePath)
	row("Created", t.CreatedAt.Local().Format(time.DateTime))
	row("Updated", t.UpdatedAt.Local().Format(time.DateTime))
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// printError writes err with a hint for the error kinds a user can act on.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var merr *domain.MergeError
	switch {
	case errors.As(err, &merr) && len(merr.Conflicts) > 0:
		fmt.Fprintf(w, "Conflicting files:\n  %s\n", strings.Join(merr.Conflicts, "\n  "))
	case errors.Is(err, domain.ErrInvalidTransition):
		fmt.Fprintln(w, "Run 'vd show <id>' to see the task's current status.")
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintln(w, "Run 'vd list' to see task IDs.")
	}
}
