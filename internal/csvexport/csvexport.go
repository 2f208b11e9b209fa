// Package csvexport turns a month of day logs into a payroll-style CSV:
// per-day project totals rounded up to quarter hours, laid out as a
// sequential, non-overlapping schedule with a break folded into the last
// row of each day.
package csvexport

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

// Header is the fixed CSV header row.
const Header = "Date,StartTime,EndTime,JobCode,Break,TotalHours,Description,InternalDescription,Workpackage,Customer,Project,KM"

// Row is one emitted CSV line, ephemeral export output only.
type Row struct {
	Date                string
	StartTime           string
	EndTime             string
	JobCode             string
	BreakMinutes        int
	TotalHours          float64
	Description         string
	InternalDescription string
	Workpackage         string
	Customer            string
	Project             string
	KM                  float64
}

// dayProject is one project's aggregate for a single date. earliestStart
// holds math.MaxInt64 while no session has been seen, so sessionless
// projects schedule after all tracked ones.
type dayProject struct {
	id            string
	totalTime     int64
	roundedTime   int64
	earliestStart int64
	description   string
	jobCode       string
	internalDesc  string
	workpackage   string
	customer      string
	projectCode   string
	km            float64
}

// Filename returns the default export filename for a YYYY-MM month.
func Filename(yearMonth string) string {
	parts := strings.SplitN(yearMonth, "-", 2)
	if len(parts) != 2 {
		return fmt.Sprintf("ImmersiveTimeTrackLog-%s.csv", yearMonth)
	}
	return fmt.Sprintf("ImmersiveTimeTrackLog-%s-%s.csv", parts[1], parts[0])
}

// Generate renders the logs as CSV text. Input entries may arrive out of
// order or with several entries per date; they are grouped and aggregated
// defensively. Wall-clock times are rendered in loc. A month with no rows
// yields just the header line.
func Generate(logs []model.DayLog, loc *time.Location) string {
	byDate := map[string][]model.DayLog{}
	for _, log := range logs {
		byDate[log.Date] = append(byDate[log.Date], log)
	}

	var rows []Row
	for date, dayLogs := range byDate {
		rows = append(rows, dayRows(date, dayLogs, loc)...)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].StartTime < rows[j].StartTime
	})

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, Header)
	for _, r := range rows {
		lines = append(lines, formatRow(r))
	}
	return strings.Join(lines, "\n")
}

// dayRows aggregates one date's logs into its scheduled rows.
func dayRows(date string, dayLogs []model.DayLog, loc *time.Location) []Row {
	projects := map[string]*dayProject{}
	var order []string
	var dayEarliest int64
	dayHasStart := false

	for _, log := range dayLogs {
		for _, p := range log.Projects {
			if p.IgnoreForCsvExport {
				continue
			}

			earliest := int64(math.MaxInt64)
			for _, s := range p.Sessions {
				if s.StartTime < earliest {
					earliest = s.StartTime
				}
				if !dayHasStart || s.StartTime < dayEarliest {
					dayEarliest = s.StartTime
					dayHasStart = true
				}
			}

			agg, ok := projects[p.ID]
			if !ok {
				projects[p.ID] = &dayProject{
					id:            p.ID,
					totalTime:     p.TotalTime,
					earliestStart: earliest,
					description:   p.Description,
					jobCode:       p.JobCode,
					internalDesc:  p.InternalDescription,
					workpackage:   p.Workpackage,
					customer:      p.Customer,
					projectCode:   p.ProjectCode,
					km:            p.KM,
				}
				order = append(order, p.ID)
				continue
			}
			agg.totalTime += p.TotalTime
			if earliest < agg.earliestStart {
				agg.earliestStart = earliest
			}
		}
	}

	var kept []*dayProject
	for _, id := range order {
		if p := projects[id]; p.totalTime > 0 {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].earliestStart < kept[j].earliestStart
	})

	var totalRounded int64
	for _, p := range kept {
		p.roundedTime = timeutil.RoundUpDuration(p.totalTime)
		totalRounded += p.roundedTime
	}
	breakMin := timeutil.BreakMinutes(totalRounded)
	breakMs := int64(breakMin) * timeutil.MinuteMs

	// Anchor the day at the earliest observed start, rounded down to the
	// quarter hour. Manual-edit-only days have no sessions; they anchor at
	// midnight of the date.
	var cursor int64
	if dayHasStart {
		cursor = timeutil.RoundDownToQuarter(dayEarliest, loc)
	} else if t, err := timeutil.ParseDate(date, loc); err == nil {
		cursor = t.UnixMilli()
	}

	rows := make([]Row, 0, len(kept))
	for i, p := range kept {
		last := i == len(kept)-1
		end := cursor + p.roundedTime
		rowBreak := 0
		if last && breakMin > 0 {
			end += breakMs
			rowBreak = breakMin
		}
		rows = append(rows, Row{
			Date:                date,
			StartTime:           timeutil.ClockString(cursor, loc),
			EndTime:             timeutil.ClockString(end, loc),
			JobCode:             p.jobCode,
			BreakMinutes:        rowBreak,
			TotalHours:          float64(p.roundedTime) / float64(timeutil.HourMs),
			Description:         p.description,
			InternalDescription: p.internalDesc,
			Workpackage:         p.workpackage,
			Customer:            p.customer,
			Project:             p.projectCode,
			KM:                  p.km,
		})
		cursor += p.roundedTime
	}
	return rows
}

func formatRow(r Row) string {
	fields := []string{
		escape(r.Date),
		escape(r.StartTime),
		escape(r.EndTime),
		escape(r.JobCode),
		strconv.Itoa(r.BreakMinutes),
		formatNumber(r.TotalHours),
		escape(r.Description),
		escape(r.InternalDescription),
		escape(r.Workpackage),
		escape(r.Customer),
		escape(r.Project),
		formatNumber(r.KM),
	}
	return strings.Join(fields, ",")
}

// formatNumber renders a float without trailing zeros: 0.75, 8.5, 8.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// escape wraps a field in quotes if it contains a comma, quote, or
// newline, doubling internal quotes.
func escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
