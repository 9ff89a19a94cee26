package model

import "time"

// TargetStatus represents the final state of one target's pipeline.
type TargetStatus string

const (
	TargetStatusDone   TargetStatus = "done"
	TargetStatusFailed TargetStatus = "failed"
)

// TargetResult holds one target's outcome.
type TargetResult struct {
	URL          string       `json:"url"`
	Strategy     string       `json:"strategy"`
	Status       TargetStatus `json:"status"`
	PagesFetched int          `json:"pages_fetched"`
	Records      int          `json:"records"`
	Error        string       `json:"error,omitempty"`
	Elapsed      int64        `json:"elapsed_ms"`
}

// RunReport is the run-level rollup emitted alongside the records.
type RunReport struct {
	RunID        string         `json:"run_id"`
	Query        string         `json:"query"`
	MaxPages     int            `json:"max_pages"`
	StartedAt    time.Time      `json:"started_at"`
	Elapsed      int64          `json:"elapsed_ms"`
	Targets      []TargetResult `json:"targets"`
	TargetsDone  int            `json:"targets_done"`
	TargetsFail  int            `json:"targets_failed"`
	TotalRecords int            `json:"total_records"`
}

// RunResult is everything a run produces: the union of record streams in
// target order plus the report.
type RunResult struct {
	Records []ArticleRecord `json:"records"`
	Report  RunReport       `json:"report"`
}
