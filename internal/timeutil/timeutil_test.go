package timeutil_test

import (
	"testing"
	"time"

	"github.com/marender/immertrack/internal/timeutil"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{45 * 1000, "45s"},
		{60 * 1000, "1m"},
		{90 * 1000, "1m"},
		{3600 * 1000, "1h 0m"},
		{5400 * 1000, "1h 30m"},
	}
	for _, tt := range tests {
		got := timeutil.FormatDuration(tt.ms)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{61 * 1000, "00:01:01"},
		{3661 * 1000, "01:01:01"},
	}
	for _, tt := range tests {
		got := timeutil.FormatHMS(tt.ms)
		if got != tt.want {
			t.Errorf("FormatHMS(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestParseHoursMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1:30", 90 * 60 * 1000, false},
		{"0:05", 5 * 60 * 1000, false},
		{"12:00", 12 * 60 * 60 * 1000, false},
		{"2:5", 125 * 60 * 1000, false},
		{"1:60", 0, true},
		{"1:75", 0, true},
		{"90m", 0, true},
		{"1:30:00", 0, true},
		{"", 0, true},
		{"-1:30", 0, true},
		{"99999999999999999999:00", 0, true},
	}
	for _, tt := range tests {
		got, err := timeutil.ParseHoursMinutes(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHoursMinutes(%q): expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHoursMinutes(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHoursMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatHoursMinutesRoundTrip(t *testing.T) {
	ms := int64(7*60+5) * 60 * 1000 // 7:05
	s := timeutil.FormatHoursMinutes(ms)
	if s != "7:05" {
		t.Fatalf("FormatHoursMinutes = %q, want %q", s, "7:05")
	}
	back, err := timeutil.ParseHoursMinutes(s)
	if err != nil {
		t.Fatal(err)
	}
	if back != ms {
		t.Errorf("round trip = %d, want %d", back, ms)
	}
}

func TestRoundUpDuration(t *testing.T) {
	const minute = int64(60 * 1000)
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{-5 * minute, 0},
		{1, 15 * minute},
		{15 * minute, 15 * minute},
		{37 * minute, 45 * minute},
		{16 * minute, 30 * minute},
		{8*60*minute + 21*minute, 8*60*minute + 30*minute},
	}
	for _, tt := range tests {
		got := timeutil.RoundUpDuration(tt.ms)
		if got != tt.want {
			t.Errorf("RoundUpDuration(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestRoundDownToQuarter(t *testing.T) {
	loc := time.UTC
	in := time.Date(2026, 2, 27, 9, 37, 42, 0, loc).UnixMilli()
	want := time.Date(2026, 2, 27, 9, 30, 0, 0, loc).UnixMilli()
	if got := timeutil.RoundDownToQuarter(in, loc); got != want {
		t.Errorf("RoundDownToQuarter = %d, want %d", got, want)
	}

	exact := time.Date(2026, 2, 27, 9, 45, 0, 0, loc).UnixMilli()
	if got := timeutil.RoundDownToQuarter(exact, loc); got != exact {
		t.Errorf("RoundDownToQuarter on boundary = %d, want %d", got, exact)
	}
}

func TestBreakMinutes(t *testing.T) {
	const hour = int64(60 * 60 * 1000)
	tests := []struct {
		ms   int64
		want int
	}{
		{0, 0},
		{5 * hour, 0},
		{6 * hour, 30},
		{8 * hour, 30},
		{9 * hour, 45},
		{12 * hour, 45},
	}
	for _, tt := range tests {
		if got := timeutil.BreakMinutes(tt.ms); got != tt.want {
			t.Errorf("BreakMinutes(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestClampElapsed(t *testing.T) {
	if got := timeutil.ClampElapsed(100, 250); got != 0 {
		t.Errorf("ClampElapsed backwards clock = %d, want 0", got)
	}
	if got := timeutil.ClampElapsed(250, 100); got != 150 {
		t.Errorf("ClampElapsed = %d, want 150", got)
	}
}

func TestGenerateID(t *testing.T) {
	ts := time.Date(2026, 2, 27, 8, 32, 10, 0, time.UTC)
	id := timeutil.GenerateID(ts)
	if len(id) != len("20260227-083210-xxxxx") {
		t.Errorf("GenerateID length = %d, want %d", len(id), len("20260227-083210-xxxxx"))
	}
	if id[:15] != "20260227-083210" {
		t.Errorf("GenerateID prefix = %q, want %q", id[:15], "20260227-083210")
	}
}
