package timeutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"time"
)

const (
	// QuarterHourMs is the rounding granularity for payroll exports.
	QuarterHourMs = 15 * 60 * 1000
	HourMs        = 60 * 60 * 1000
	MinuteMs      = 60 * 1000
)

// GenerateID creates a unique project ID based on timestamp and random suffix.
func GenerateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}

// DateString formats t as a YYYY-MM-DD calendar date.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD date string in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// ParseYearMonth parses a YYYY-MM string to the first day of that month.
func ParseYearMonth(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01", s, loc)
}

// FormatDuration formats milliseconds as a human-readable string like
// "1h 40m" or "45m" or "30s".
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", seconds%60)
}

// FormatHMS formats milliseconds as HH:MM:SS.
func FormatHMS(ms int64) string {
	seconds := ms / 1000
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHoursMinutes formats milliseconds as H:MM, the format accepted
// back by ParseHoursMinutes for manual corrections.
func FormatHoursMinutes(ms int64) string {
	minutes := ms / MinuteMs
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

var hoursMinutesRe = regexp.MustCompile(`^(\d+):(\d{1,2})$`)

// ParseHoursMinutes parses a manual H:MM time input into milliseconds.
// Inputs that do not match H:MM or specify 60 or more minutes are rejected.
func ParseHoursMinutes(s string) (int64, error) {
	m := hoursMinutesRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q, expected H:MM", s)
	}
	hours, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minutes, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if minutes >= 60 {
		return 0, fmt.Errorf("invalid time %q: minutes must be below 60", s)
	}
	return (hours*60 + minutes) * MinuteMs, nil
}

// ClockString formats an epoch-millisecond instant as HH:MM:SS wall time
// in the given location.
func ClockString(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("15:04:05")
}

// RoundUpDuration rounds a duration up to the nearest quarter hour.
// Non-positive durations round to zero.
func RoundUpDuration(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + QuarterHourMs - 1) / QuarterHourMs * QuarterHourMs
}

// RoundDownToQuarter rounds an epoch-millisecond instant down to the
// nearest quarter-hour clock boundary in the given location.
func RoundDownToQuarter(ms int64, loc *time.Location) int64 {
	t := time.UnixMilli(ms).In(loc)
	minute := t.Minute() / 15 * 15
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, loc).UnixMilli()
}

// BreakMinutes returns the payroll break allowance for a day's rounded
// total working time: 45 minutes from nine hours, 30 from six.
func BreakMinutes(totalMs int64) int {
	hours := float64(totalMs) / float64(HourMs)
	switch {
	case hours >= 9:
		return 45
	case hours >= 6:
		return 30
	default:
		return 0
	}
}

// ClampElapsed returns now-start, clamped to zero. A system clock stepped
// backwards must never yield a negative elapsed time.
func ClampElapsed(nowMs, startMs int64) int64 {
	if nowMs <= startMs {
		return 0
	}
	return nowMs - startMs
}
