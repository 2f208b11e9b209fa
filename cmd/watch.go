package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the interactive timer widget",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	m := ui.New(
		a.eng,
		a.coord,
		a.states,
		a.reg.Active(),
		time.Duration(a.cfg.RolloverCheckSeconds)*time.Second,
		time.Duration(a.cfg.BackstopSaveSeconds)*time.Second,
	)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
