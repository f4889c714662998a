package repository

import (
	"context"
	"time"

	"dirmerge/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save records the outcome of n within run runID.
func (r *HistoryRepository) Save(ctx context.Context, runID string, n *model.Node) error {
	errMsg := ""
	if n.Err != nil {
		errMsg = n.Err.Error()
	}

	history := model.History{
		RunID:       runID,
		Path:        n.Path,
		Status:      n.Status,
		Differences: n.Differences,
		Action:      n.Action,
		ErrMsg:      errMsg,
		MergedAt:    time.Now(),
	}

	return r.db.WithContext(ctx).Create(&history).Error
}

type Stats struct {
	Total  int64
	Merged int64
	Failed int64
}

func (r *HistoryRepository) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.Model(&model.History{}).
		Where("status = ?", model.StatusMerged).
		Count(&stats.Merged).Error; err != nil {
		return stats, err
	}

	if err := db.Model(&model.History{}).
		Where("status = ?", model.StatusError).
		Count(&stats.Failed).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

func (r *HistoryRepository) GetRecent(ctx context.Context, limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.WithContext(ctx).
		Order("merged_at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetRun(ctx context.Context, runID string) ([]model.History, error) {
	var histories []model.History
	result := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed(ctx context.Context) ([]model.History, error) {
	var histories []model.History
	result := r.db.WithContext(ctx).
		Where("status = ?", model.StatusError).
		Order("merged_at desc").
		Find(&histories)

	return histories, result.Error
}
