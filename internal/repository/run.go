package repository

import (
	"plexvault/internal/db"
	"plexvault/internal/model"
)

type RunRepository struct{}

func NewRunRepository() *RunRepository {
	return &RunRepository{}
}

func (r *RunRepository) Save(run model.Run) error {
	return db.DB.Create(&run).Error
}

func (r *RunRepository) GetRecent(limit int) ([]model.Run, error) {
	var runs []model.Run
	result := db.DB.
		Order("finished_at desc").
		Limit(limit).
		Find(&runs)

	return runs, result.Error
}

func (r *RunRepository) GetFailed() ([]model.Run, error) {
	var runs []model.Run
	result := db.DB.
		Where("state = ?", model.StateFailed).
		Order("finished_at desc").
		Find(&runs)

	return runs, result.Error
}

type Stats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

func (r *RunRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.Run{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.Run{}).
		Where("state IN ?", []model.JobState{model.StateCompleted, model.StateCompletedWithWarnings}).
		Count(&stats.Succeeded).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Succeeded
	return stats, nil
}
