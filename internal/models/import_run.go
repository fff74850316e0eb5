package models

import "time"

// ImportStatus is the outcome of an import run.
type ImportStatus string

const (
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportRun records one execution of the spreadsheet import for a network.
type ImportRun struct {
	ID         string       `json:"id" bson:"_id"`
	Network    Network      `json:"network" bson:"network"`
	Status     ImportStatus `json:"status" bson:"status"`
	Tabs       []string     `json:"tabs" bson:"tabs"`
	Rows       int          `json:"rows" bson:"rows"`
	Accounts   int          `json:"accounts" bson:"accounts"`
	Samples    int          `json:"samples" bson:"samples"`
	Error      string       `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at" bson:"started_at"`
	FinishedAt time.Time    `json:"finished_at" bson:"finished_at"`
	DurationMs int64        `json:"duration_ms" bson:"duration_ms"`
}
