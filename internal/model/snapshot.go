package model

import "time"

// JobSnapshot is an atomic read of the running (or last finished) job.
type JobSnapshot struct {
	ID              string     `json:"id"`
	Operation       Operation  `json:"operation"`
	SourcePath      string     `json:"source_path"`
	DestPath        string     `json:"dest_path"`
	LogPath         string     `json:"log_path"`
	StopService     bool       `json:"stop_service"`
	State           JobState   `json:"state"`
	Progress        int        `json:"progress"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ElapsedSeconds  float64    `json:"elapsed_seconds"`
	ExitCode        *int       `json:"exit_code,omitempty"`
	ResultSizeBytes *int64     `json:"result_size_bytes,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// Result is the machine-readable record handed back to automation once a
// job reaches a terminal state.
type Result struct {
	State           JobState `json:"state"`
	ExitCode        *int     `json:"exit_code,omitempty"`
	DurationSeconds float64  `json:"duration_seconds"`
	ResultSizeBytes *int64   `json:"result_size_bytes,omitempty"`
	LogPath         string   `json:"log_path"`
	Error           string   `json:"error,omitempty"`
}

// Result collapses a terminal snapshot into its result record.
func (s JobSnapshot) Result() Result {
	return Result{
		State:           s.State,
		ExitCode:        s.ExitCode,
		DurationSeconds: s.ElapsedSeconds,
		ResultSizeBytes: s.ResultSizeBytes,
		LogPath:         s.LogPath,
		Error:           s.Error,
	}
}
