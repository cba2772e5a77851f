package backup

import (
	"time"

	"plexvault/internal/model"
)

// Job is a single backup attempt. All mutable fields are owned by the
// Supervisor and written only under its lock; readers get a JobSnapshot.
type Job struct {
	ID          string
	Operation   model.Operation
	SourcePath  string
	DestPath    string
	LogPath     string
	StopService bool

	State           model.JobState
	Progress        int
	StartedAt       time.Time
	EndedAt         *time.Time
	ExitCode        *int
	ResultSizeBytes *int64
	Err             string
}

func (j *Job) terminal() bool {
	return j.State.Terminal()
}

func (j *Job) snapshot(now time.Time) model.JobSnapshot {
	elapsed := now.Sub(j.StartedAt)
	if j.EndedAt != nil {
		elapsed = j.EndedAt.Sub(j.StartedAt)
	}

	return model.JobSnapshot{
		ID:              j.ID,
		Operation:       j.Operation,
		SourcePath:      j.SourcePath,
		DestPath:        j.DestPath,
		LogPath:         j.LogPath,
		StopService:     j.StopService,
		State:           j.State,
		Progress:        j.Progress,
		StartedAt:       j.StartedAt,
		EndedAt:         j.EndedAt,
		ElapsedSeconds:  elapsed.Seconds(),
		ExitCode:        j.ExitCode,
		ResultSizeBytes: j.ResultSizeBytes,
		Error:           j.Err,
	}
}
