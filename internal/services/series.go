package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yomikata/yomikata-backend/internal/data/repos"
	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/pkg/errors"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

type SeriesService interface {
	CreateSeries(ctx context.Context, title string, totalChapters int) (*types.Series, error)
	GetSeries(ctx context.Context, seriesID uuid.UUID) (*types.Series, error)
}

type seriesService struct {
	db         *gorm.DB
	log        *logger.Logger
	seriesRepo repos.SeriesRepo
}

func NewSeriesService(db *gorm.DB, log *logger.Logger, seriesRepo repos.SeriesRepo) SeriesService {
	serviceLog := log.With("service", "SeriesService")
	return &seriesService{db: db, log: serviceLog, seriesRepo: seriesRepo}
}

func (s *seriesService) CreateSeries(ctx context.Context, title string, totalChapters int) (*types.Series, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("series title required: %w", errors.ErrInvalidArgument)
	}
	if totalChapters < 0 {
		return nil, fmt.Errorf("total chapters must be non-negative: %w", errors.ErrInvalidArgument)
	}
	series := &types.Series{
		ID:            uuid.New(),
		Title:         title,
		TotalChapters: totalChapters,
	}
	if _, err := s.seriesRepo.Create(ctx, nil, []*types.Series{series}); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	return series, nil
}

func (s *seriesService) GetSeries(ctx context.Context, seriesID uuid.UUID) (*types.Series, error) {
	series, err := s.seriesRepo.GetByIDs(ctx, nil, []uuid.UUID{seriesID})
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	if len(series) == 0 {
		return nil, errors.ErrNotFound
	}
	return series[0], nil
}
