package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/csvexport"
	"github.com/marender/immertrack/internal/timeutil"
)

var (
	exportMonth  string
	exportOutput string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month as payroll-style CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month to export (YYYY-MM, default current)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default ImmersiveTimeTrackLog-<MM>-<YYYY>.csv)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write CSV to stdout instead of a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	month := exportMonth
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := timeutil.ParseYearMonth(month, time.UTC); err != nil {
		fmt.Fprintf(os.Stderr, "invalid --month value %q: %v\n", exportMonth, err)
		os.Exit(1)
	}

	// Make sure today's data is part of the export before reading back.
	if err := a.coord.BackstopSave(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save day log: %v\n", err)
	}

	logs, err := a.logs.LoadMonth(month)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	content := csvexport.Generate(logs, a.loc)

	if exportStdout {
		fmt.Println(content)
		return nil
	}

	path := exportOutput
	if path == "" {
		path = csvexport.Filename(month)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", path, err)
		os.Exit(2)
	}

	fmt.Printf("Exported %d day(s) to %s\n", len(logs), path)
	return nil
}
