package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/repository"
)

// RunService serves run history queries and the platform stats rollup.
type RunService struct {
	runs     *repository.RunRepo
	videos   *repository.VideoRepo
	channels *repository.ChannelRepo
}

func NewRunService(runs *repository.RunRepo, videos *repository.VideoRepo, channels *repository.ChannelRepo) *RunService {
	return &RunService{runs: runs, videos: videos, channels: channels}
}

// List returns past runs matching the filters, newest first.
func (s *RunService) List(ctx context.Context, q model.RunListQuery) (*model.RunListResponse, error) {
	runs, total, err := s.runs.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []model.Run{}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	return &model.RunListResponse{
		Data:  runs,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// Get returns a single run by ID.
func (s *RunService) Get(ctx context.Context, id int64) (*model.Run, error) {
	run, err := s.runs.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Stats assembles the aggregate platform statistics.
func (s *RunService) Stats(ctx context.Context) (*model.StatsResponse, error) {
	byStatus, err := s.videos.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	totalVideos := 0
	for _, n := range byStatus {
		totalVideos += n
	}

	relevant, err := s.videos.CountRelevant(ctx)
	if err != nil {
		return nil, err
	}

	totalChannels, activeChannels, err := s.channels.Counts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.StatsResponse{
		TotalVideos:    totalVideos,
		TotalChannels:  totalChannels,
		ActiveChannels: activeChannels,
		RelevantVideos: relevant,
		ByStatus:       byStatus,
	}

	latest, err := s.runs.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		stats.LastRunAt = &latest.StartedAt
		stats.LastRunStatus = string(latest.Status)
	}
	return stats, nil
}
