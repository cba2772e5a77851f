package model

type JobState string

const (
	StatePending               JobState = "PENDING"
	StateConfirmed             JobState = "CONFIRMED"
	StateRunning               JobState = "RUNNING"
	StateCompleted             JobState = "COMPLETED"
	StateCompletedWithWarnings JobState = "COMPLETED_WITH_WARNINGS"
	StateFailed                JobState = "FAILED"
	StateCancelled             JobState = "CANCELLED"
)

// Terminal reports whether no further transition can occur.
func (s JobState) Terminal() bool {
	switch s {
	case StateCompleted, StateCompletedWithWarnings, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}
