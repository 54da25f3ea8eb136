package model

import "time"

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// RunLog summarizes one sync invocation. Exactly one terminal record
// (success or error) is written per run, after all feeds were attempted.
type RunLog struct {
	ID         string
	Platform   string
	Status     string
	ItemsFound int
	ItemsSaved int
	ErrorMsg   string // empty when the run had no feed errors
	HTTPStatus int    // status of the last failed feed request, 0 if none
	DurationMS int64
	CreatedAt  time.Time
}
