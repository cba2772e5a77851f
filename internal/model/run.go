package model

import (
	"time"

	"gorm.io/gorm"
)

// Run is the persisted record of a finished backup job.
type Run struct {
	gorm.Model
	JobID           string    `gorm:"not null;index"`
	Operation       Operation `gorm:"not null"`
	SrcPath         string    `gorm:"not null"`
	DstPath         string    `gorm:"not null"`
	LogPath         string
	State           JobState `gorm:"not null"`
	ExitCode        int
	DurationSeconds float64
	SizeBytes       int64
	ErrMsg          string
	FinishedAt      time.Time `gorm:"not null"`
}
