package backup

import "time"

// The mirror tool reports no granular progress, so the estimator maps
// elapsed wall-clock time onto a coarse bucket. Each tick recomputes the
// bucket from elapsed time rather than the previous value, which keeps the
// function deterministic and restart-safe.
const progressCeiling = 95

func progressBucket(elapsed time.Duration) int {
	switch m := elapsed.Minutes(); {
	case m < 1:
		return 5
	case m < 5:
		return 15
	case m < 10:
		return 35
	case m < 20:
		return 60
	case m < 30:
		return 80
	default:
		return 90
	}
}

// estimateProgress returns the display value for an in-flight job. 95 is
// reserved as a ceiling; 100 is written only at finalization.
func estimateProgress(elapsed time.Duration) int {
	return min(progressBucket(elapsed), progressCeiling)
}
