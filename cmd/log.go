package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

var (
	logDate        string
	logEditDate    string
	logEditProject string
	logEditTime    string
	logEditDesc    string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show a day's tracked time",
	Args:  cobra.NoArgs,
	RunE:  runLogShow,
}

var logEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Manually correct a project's total or description for a day",
	Long: `Replaces one project's total time for a day with an H:MM value, or sets
its per-day description, or both. The session history of that day is left
untouched; a corrected total is authoritative from then on.`,
	Args: cobra.NoArgs,
	RunE: runLogEdit,
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "Date to show (YYYY-MM-DD, default today)")
	logEditCmd.Flags().StringVar(&logEditDate, "date", "", "Date to edit (YYYY-MM-DD, default today)")
	logEditCmd.Flags().StringVar(&logEditProject, "project", "", "Project name or ID (required)")
	logEditCmd.Flags().StringVar(&logEditTime, "time", "", "New total as H:MM")
	logEditCmd.Flags().StringVar(&logEditDesc, "description", "", "Per-day description for the project")
	logCmd.AddCommand(logEditCmd)
}

func runLogShow(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	today := timeutil.DateString(time.Now())
	date := logDate
	if date == "" {
		date = today
	}
	if _, err := timeutil.ParseDate(date, time.UTC); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date value %q: %v\n", logDate, err)
		os.Exit(1)
	}

	var log *model.DayLog
	if date == today {
		// Today renders from live engine state, not the last backstop save.
		built := a.coord.CurrentDayLog()
		log = &built
	} else {
		var err error
		log, err = a.logs.Load(date)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	if log == nil || len(log.Projects) == 0 {
		fmt.Printf("%s: nothing tracked.\n", date)
		return nil
	}

	fmt.Println(log.Date)
	var total int64
	for _, p := range log.Projects {
		live := p.TotalTime
		if date == today {
			live = a.eng.ElapsedFor(p.ID)
		}
		total += live
		desc := ""
		if p.Description != "" {
			desc = "  " + p.Description
		}
		fmt.Printf("  %-20s %s  (%d sessions)%s\n", p.Name, timeutil.FormatHMS(live), len(p.Sessions), desc)
	}
	fmt.Printf("  %-20s %s\n", "Total", timeutil.FormatHMS(total))
	return nil
}

func runLogEdit(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	flags := cmd.Flags()
	if logEditProject == "" {
		fmt.Fprintln(os.Stderr, "--project is required")
		os.Exit(1)
	}
	if !flags.Changed("time") && !flags.Changed("description") {
		fmt.Fprintln(os.Stderr, "nothing to edit: give --time and/or --description")
		os.Exit(1)
	}

	project, ok := a.reg.Resolve(logEditProject)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown project %q\n", logEditProject)
		os.Exit(1)
	}

	today := timeutil.DateString(time.Now())
	date := logEditDate
	if date == "" {
		date = today
	}
	if _, err := timeutil.ParseDate(date, time.UTC); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --date value %q: %v\n", logEditDate, err)
		os.Exit(1)
	}

	if flags.Changed("time") {
		newTotal, err := timeutil.ParseHoursMinutes(logEditTime)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if date == today {
			a.eng.SetTotal(project.ID, newTotal)
			a.saveState()
			if err := a.coord.BackstopSave(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save day log: %v\n", err)
			}
		} else {
			if err := a.logs.UpdateProjectTotal(date, project.ID, newTotal); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		}
		fmt.Printf("Set %q on %s to %s\n", project.Name, date, timeutil.FormatHoursMinutes(newTotal))
	}

	if flags.Changed("description") {
		if date == today {
			// Make sure today's file carries the project before editing it.
			if err := a.coord.BackstopSave(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save day log: %v\n", err)
			}
		}
		if err := a.logs.UpdateProjectDescription(date, project.ID, logEditDesc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Printf("Set description for %q on %s\n", project.Name, date)
	}
	return nil
}
