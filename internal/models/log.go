package models

// LogEntry is the per-date, per-student class record. done=true removes the
// student from the active roster; archived=true hides a finished entry from
// the "done today" view without deleting history.
type LogEntry struct {
	Done       bool   `json:"done,omitempty"`
	Archived   bool   `json:"archived,omitempty"`
	LeaveTime  string `json:"leaveTime,omitempty"`
	HwAssigned bool   `json:"hwAssigned,omitempty"`
	HwChecked  bool   `json:"hwChecked,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Progress   string `json:"progress,omitempty"`
}

// DayLogs maps student id to log entry for one date.
type DayLogs map[string]LogEntry

// LogPatch merges a single student's fields into the day's record. Clear
// lists field names the server must delete from the stored entry; the rest of
// the day's map is never re-sent (see the logs/patch endpoint).
type LogPatch struct {
	Date  DateKey                `json:"date"`
	SID   string                 `json:"sid"`
	Entry map[string]interface{} `json:"entry"`
	Clear []string               `json:"__clear,omitempty"`
}
