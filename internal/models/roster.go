package models

// RosterEntry is the derived per-student row of the resolved daily roster.
// It is computed per request and never persisted.
type RosterEntry struct {
	Student    Student `json:"student"`
	SlotLabel  string  `json:"slotLabel"`
	Arrival    string  `json:"arrival"`
	Leave      string  `json:"leave,omitempty"`
	Attended   bool    `json:"attended"`
	Contacted  bool    `json:"contacted"`
	HwAssigned bool    `json:"hwAssigned"`
	HwChecked  bool    `json:"hwChecked"`
}

// DoneEntry is a row of the finished-today view.
type DoneEntry struct {
	Student Student  `json:"student"`
	Entry   LogEntry `json:"entry"`
}

// OccupancyBin is one hour of the occupancy forecast.
type OccupancyBin struct {
	Hour  int `json:"hour"` // bin start, hours since midnight
	Count int `json:"count"`
}
