package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/timeutil"
)

var reportMonth string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show aggregated per-project totals for a month",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Month to report (YYYY-MM, default current)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	month := reportMonth
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := timeutil.ParseYearMonth(month, time.UTC); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --month value %q: %v\n", reportMonth, err)
		os.Exit(1)
	}

	if err := a.coord.BackstopSave(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save day log: %v\n", err)
	}

	logs, err := a.logs.LoadMonth(month)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Aggregate by project name across the month.
	totals := map[string]int64{}
	var order []string
	for _, log := range logs {
		for _, p := range log.Projects {
			if _, seen := totals[p.Name]; !seen {
				order = append(order, p.Name)
			}
			totals[p.Name] += p.TotalTime
		}
	}
	sort.Strings(order)

	var grandTotal int64
	for _, ms := range totals {
		grandTotal += ms
	}

	fmt.Printf("Month %s\n", month)
	fmt.Println("--------------------------------")
	for _, name := range order {
		fmt.Printf("%-20s%s\n", name, timeutil.FormatDuration(totals[name]))
	}
	fmt.Println("--------------------------------")
	fmt.Printf("%-20s%s\n", "Total", timeutil.FormatDuration(grandTotal))
	return nil
}
