package repository

import (
	"context"

	"github.com/Baaaki/campus-market/internal/models"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// List returns one page of the log, newest first, with causers loaded.
func (r *ActivityRepository) List(ctx context.Context, page, size int) ([]models.Activity, int64, error) {
	page, size = NormalizePage(page, size)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Activity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Preload("Causer").
		Order("created_at DESC").
		Order("id DESC").
		Offset(Offset(page, size)).
		Limit(size).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
