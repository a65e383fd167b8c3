package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/repository"
)

// VideoService serves video queries and the reanalysis operation.
type VideoService struct {
	videos   *repository.VideoRepo
	channels *repository.ChannelRepo
	cache    *CacheService
}

func NewVideoService(videos *repository.VideoRepo, channels *repository.ChannelRepo, cache *CacheService) *VideoService {
	return &VideoService{videos: videos, channels: channels, cache: cache}
}

// ListByChannel returns list-view summaries for one channel, newest
// first. The channel must exist.
func (s *VideoService) ListByChannel(ctx context.Context, channelID string) ([]model.VideoSummary, error) {
	if _, err := s.channels.FindByChannelID(ctx, channelID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	videos, err := s.videos.FindByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []model.VideoSummary{}
	}
	return videos, nil
}

// Get returns the full video record including transcript and analysis,
// cache-aside.
func (s *VideoService) Get(ctx context.Context, id int64) (*model.Video, error) {
	if cached, err := s.cache.GetVideo(ctx, id); err == nil && cached != nil {
		var v model.Video
		if err := json.Unmarshal(cached, &v); err == nil {
			return &v, nil
		}
	} else if err != nil {
		log.Printf("video service: cache read failed for %d: %v", id, err)
	}

	v, err := s.videos.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetVideo(ctx, id, v); err != nil {
		log.Printf("video service: cache write failed for %d: %v", id, err)
	}
	return v, nil
}

// Reanalyze resets a video to not_started with transcript, analysis and
// relevance cleared, making it eligible for the next pipeline run. It is
// a pure state reset; no transcription or classification happens here.
func (s *VideoService) Reanalyze(ctx context.Context, id int64) (*model.Video, error) {
	err := s.videos.ResetForReanalysis(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, v)
	log.Printf("video service: video %d queued for reanalysis", id)
	return v, nil
}

func (s *VideoService) invalidate(ctx context.Context, v *model.Video) {
	if err := s.cache.InvalidateVideo(ctx, v.ID); err != nil {
		log.Printf("video service: cache invalidation failed for %d: %v", v.ID, err)
	}
	if err := s.cache.InvalidateChannel(ctx, v.ChannelID); err != nil {
		log.Printf("video service: channel cache invalidation failed for %s: %v", v.ChannelID, err)
	}
}
