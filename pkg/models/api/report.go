package api

import "time"

type Report struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Type        string `json:"type"`
	File        string `json:"file"`
}

type Snapshot struct {
	CurrentPeriod string   `json:"current_period"`
	LastUpdated   string   `json:"last_updated"`
	Reports       []Report `json:"reports"`
}

type Health struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	ReportsCount int       `json:"reports_count"`
	MissingFiles []string  `json:"missing_files,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
