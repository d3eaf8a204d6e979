package domain

import "time"

// Report describes one pre-rendered report document
type Report struct {
	ID          string
	Title       string
	Description string
	Language    string
	Type        string
	File        string
}

// Snapshot is the full, immutable set of report metadata at one point in time
type Snapshot struct {
	CurrentPeriod string
	LastUpdated   string
	Reports       []Report
}

// Find returns the report with exactly the given id.
func (s Snapshot) Find(id string) (Report, bool) {
	for _, r := range s.Reports {
		if r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}

// Clone returns a deep copy so callers never share the backing slice.
func (s Snapshot) Clone() Snapshot {
	reports := make([]Report, len(s.Reports))
	copy(reports, s.Reports)
	return Snapshot{
		CurrentPeriod: s.CurrentPeriod,
		LastUpdated:   s.LastUpdated,
		Reports:       reports,
	}
}

// ReportFile is a report document found on disk
type ReportFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}
