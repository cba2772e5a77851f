package backup

import (
	"testing"
	"time"
)

func TestProgressBuckets(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 5},
		{30 * time.Second, 5},
		{time.Minute, 15},
		{4 * time.Minute, 15},
		{5 * time.Minute, 35},
		{9*time.Minute + 59*time.Second, 35},
		{10 * time.Minute, 60},
		{19 * time.Minute, 60},
		{20 * time.Minute, 80},
		{29 * time.Minute, 80},
		{30 * time.Minute, 90},
		{5 * time.Hour, 90},
	}

	for _, tt := range tests {
		if got := estimateProgress(tt.elapsed); got != tt.want {
			t.Errorf("estimateProgress(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestProgressMonotonicAndCapped(t *testing.T) {
	prev := -1
	for e := time.Duration(0); e <= 2*time.Hour; e += 10 * time.Second {
		got := estimateProgress(e)

		if got < prev {
			t.Fatalf("progress decreased at %v: %d -> %d", e, prev, got)
		}
		if got > progressCeiling {
			t.Fatalf("progress %d at %v exceeds ceiling %d", got, e, progressCeiling)
		}

		prev = got
	}
}
