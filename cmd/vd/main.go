// Package main provides the entry point for vd, the vibedove kanban board.
//
// vd tracks development tasks on a personal kanban board and gives each
// started task its own git branch and worktree.
//
// Usage:
//
//	vd [command] [flags]
//
// Without a command vd opens the board when stdout is a terminal and prints
// the task list otherwise.
package main

import (
	"os"

	"github.com/vibedove/vibedove/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
