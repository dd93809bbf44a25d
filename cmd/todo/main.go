// Package main implements the todoevo console client, an interactive task
// manager backed by an in-memory store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command; running it starts the interactive
// session.
var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage your tasks from the command line",
	Long: `An interactive task manager. Usage:

	todo

Commands inside the session:
  add "title" "optional description"
  view
  update <id> "title" "optional description"
  delete <id>
  complete <id>
  help
  exit
`,
	Run: func(cmd *cobra.Command, args []string) {
		repl := NewREPL(os.Stdin, os.Stdout)
		repl.Run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
