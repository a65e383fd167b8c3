package model

import "time"

// RunStatus is the lifecycle of one pipeline execution. A run is terminal
// once it reaches success or failed.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// JobTypeDailyTranscription tags runs created by the scheduled ingestion job.
const JobTypeDailyTranscription = "daily_transcription"

// Run is the audit record for one pipeline execution. Created when the
// run starts, updated exactly once more when it reaches a terminal state.
type Run struct {
	ID              int64          `json:"id"`
	JobType         string         `json:"jobType"`
	StartedAt       time.Time      `json:"startedAt"`
	FinishedAt      *time.Time     `json:"finishedAt,omitempty"`
	Status          RunStatus      `json:"status"`
	VideosProcessed int            `json:"videosProcessed"`
	ErrorMessage    string         `json:"errorMessage,omitempty"`
	Meta            map[string]any `json:"meta,omitempty"`
}

// RunListQuery are the filters for listing past runs.
type RunListQuery struct {
	Status    RunStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// RunListResponse is the paginated API response for run history.
type RunListResponse struct {
	Data  []Run `json:"data"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
