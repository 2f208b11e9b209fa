package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <project>",
	Short: "Start the timer for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	project, ok := a.reg.Resolve(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown project %q. Run 'itt project list' to see projects.\n", args[0])
		os.Exit(1)
	}
	if project.Archived {
		fmt.Fprintf(os.Stderr, "Warning: project %q is archived\n", project.Name)
	}

	// Switching projects commits the outgoing session first; tell the user.
	if activeID, running := a.eng.Active(); running && activeID != project.ID {
		if prev, ok := a.reg.Get(activeID); ok {
			fmt.Fprintf(os.Stderr, "Warning: auto-stopping active timer for project %q\n", prev.Name)
		}
	}

	if !a.eng.Start(project.ID) {
		a.saveState()
		fmt.Fprintln(os.Stderr, "Daily limit reached; timer not started.")
		os.Exit(1)
	}
	a.saveState()

	fmt.Printf("Started timer for project %q at %s\n", project.Name, time.Now().Format("15:04:05"))
	return nil
}
