package model

// All instants are Unix epoch milliseconds and all durations are
// milliseconds, matching the on-disk JSON produced by earlier releases.

// Session is one contiguous interval of active tracking for a project.
// EndTime is nil only while the session is still open in memory; every
// persisted session has both bounds and Duration = EndTime - StartTime.
type Session struct {
	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime"`
	Duration  int64  `json:"duration"`
}

// ProjectTime accumulates one project's tracked time for a single day.
type ProjectTime struct {
	ProjectID string    `json:"projectId"`
	TotalTime int64     `json:"totalTime"`
	Sessions  []Session `json:"sessions"`
}

// EngineState is the live, mutable timer state for the current day.
// ActiveProjectID and ActiveStartTime are set together or not at all.
type EngineState struct {
	ActiveProjectID *string                `json:"activeProjectId"`
	ActiveStartTime *int64                 `json:"activeStartTime"`
	ProjectTimes    map[string]ProjectTime `json:"projectTimes"`
	CurrentDate     string                 `json:"currentDate"`
	LimitReached    bool                   `json:"limitReached,omitempty"`
}

// Project is a named bucket time can be tracked against, including the
// attributes carried into payroll CSV exports.
type Project struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Color               string  `json:"color"`
	Icon                string  `json:"icon"`
	Archived            bool    `json:"archived,omitempty"`
	IgnoreForCsvExport  bool    `json:"ignoreForCsvExport,omitempty"`
	JobCode             string  `json:"jobCode,omitempty"`
	InternalDescription string  `json:"internalDescription,omitempty"`
	Workpackage         string  `json:"workpackage,omitempty"`
	Customer            string  `json:"customer,omitempty"`
	ProjectCode         string  `json:"projectCode,omitempty"`
	KM                  float64 `json:"km,omitempty"`
}

// DayProject is one project's frozen record inside a DayLog: the tracked
// time plus a snapshot of the project's CSV-export metadata at save time.
type DayProject struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Icon                string    `json:"icon"`
	Color               string    `json:"color"`
	TotalTime           int64     `json:"totalTime"`
	Sessions            []Session `json:"sessions"`
	Description         string    `json:"description,omitempty"`
	IgnoreForCsvExport  bool      `json:"ignoreForCsvExport,omitempty"`
	JobCode             string    `json:"jobCode,omitempty"`
	InternalDescription string    `json:"internalDescription,omitempty"`
	Workpackage         string    `json:"workpackage,omitempty"`
	Customer            string    `json:"customer,omitempty"`
	ProjectCode         string    `json:"projectCode,omitempty"`
	KM                  float64   `json:"km,omitempty"`
}

// DayLog is the durable unit of history: everything tracked on one
// calendar date, keyed by its YYYY-MM-DD date string.
type DayLog struct {
	Date     string       `json:"date"`
	Projects []DayProject `json:"projects"`
}
