package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/timeutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current timer status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	if activeID, running := a.eng.Active(); running {
		name := activeID
		if p, ok := a.reg.Get(activeID); ok {
			name = p.Name
		}
		fmt.Println("Running:")
		fmt.Printf("  Project: %s\n", name)
		if startMs, ok := a.eng.ActiveSince(); ok {
			fmt.Printf("  Since: %s\n", time.UnixMilli(startMs).Format("15:04"))
		}
		fmt.Printf("  Elapsed: %s\n", timeutil.FormatHMS(a.eng.ElapsedFor(activeID)))
	} else {
		fmt.Println("No active timer.")
	}

	fmt.Printf("Today: %s logged.\n", timeutil.FormatDuration(a.eng.TodayTotal()))
	if a.eng.LimitReached() {
		fmt.Printf("Daily limit of %dh reached; timers are paused until tomorrow.\n", a.cfg.DailyCapHours)
	}
	return nil
}
