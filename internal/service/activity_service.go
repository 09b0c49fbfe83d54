package service

import (
	"context"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

// ActivityPageSize is the admin audit log page size
const ActivityPageSize = 15

type ActivityPage struct {
	Data       []models.Activity     `json:"data"`
	Pagination repository.Pagination `json:"pagination"`
}

type ActivityService struct {
	activities *repository.ActivityRepository
}

func NewActivityService(activities *repository.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activities}
}

// List returns one page of the audit log, newest first.
func (s *ActivityService) List(ctx context.Context, page int) (*ActivityPage, error) {
	page, size := repository.NormalizePage(page, ActivityPageSize)

	activities, total, err := s.activities.List(ctx, page, size)
	if err != nil {
		logger.Log.Error("Failed to list activities", zap.Error(err))
		return nil, err
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	return &ActivityPage{
		Data:       activities,
		Pagination: repository.NewPagination(total, page, size),
	}, nil
}
