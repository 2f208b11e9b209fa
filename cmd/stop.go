package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the currently running timer",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	activeID, running := a.eng.Active()
	if !running {
		fmt.Fprintln(os.Stderr, "No active timer to stop.")
		os.Exit(1)
	}

	a.eng.Stop()
	total := a.eng.ElapsedFor(activeID)
	a.saveState()

	name := activeID
	if p, ok := a.reg.Get(activeID); ok {
		name = p.Name
	}
	fmt.Printf("Stopped timer for project %q. Today: %s\n", name, formatElapsed(total/1000))
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
