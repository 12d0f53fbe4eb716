package models

import "time"

// Scrape job states.
const (
	JobPending   = "PENDING"
	JobRunning   = "RUNNING"
	JobCompleted = "COMPLETED"
	JobFailed    = "FAILED"
)

// Scrape job target types.
const (
	TargetNavigation = "NAVIGATION"
	TargetCategory   = "CATEGORY"
	TargetProduct    = "PRODUCT"
)

// ScrapeJob tracks one pipeline run. Completion is observed by polling
// the job, never pushed.
type ScrapeJob struct {
	ID         string     `json:"id"`
	TargetURL  string     `json:"target_url,omitempty"`
	TargetType string     `json:"target_type"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ErrorLog   string     `json:"error_log,omitempty"`
}
