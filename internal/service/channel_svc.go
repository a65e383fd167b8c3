package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmpocmkp/kptube-go/internal/model"
	"github.com/cmpocmkp/kptube-go/internal/repository"
)

// ErrNotFound is returned when a requested channel, video or run does
// not exist. Handlers translate it to a 404.
var ErrNotFound = errors.New("not found")

// ChannelService serves channel lookups with per-channel video
// aggregates, backed by the Redis cache.
type ChannelService struct {
	channels *repository.ChannelRepo
	cache    *CacheService
}

func NewChannelService(channels *repository.ChannelRepo, cache *CacheService) *ChannelService {
	return &ChannelService{channels: channels, cache: cache}
}

// List returns every monitored channel with its video aggregates.
func (s *ChannelService) List(ctx context.Context) ([]model.ChannelResponse, error) {
	channels, err := s.channels.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]model.ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		total, completed, relevant, err := s.channels.VideoAggregates(ctx, ch.ChannelID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, channelResponse(ch, total, completed, relevant))
	}
	return resp, nil
}

// Get returns one channel with its video aggregates, cache-aside.
func (s *ChannelService) Get(ctx context.Context, channelID string) (*model.ChannelResponse, error) {
	if cached, err := s.cache.GetChannel(ctx, channelID); err == nil && cached != nil {
		var resp model.ChannelResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	} else if err != nil {
		log.Printf("channel service: cache read failed for %s: %v", channelID, err)
	}

	ch, err := s.channels.FindByChannelID(ctx, channelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	total, completed, relevant, err := s.channels.VideoAggregates(ctx, channelID)
	if err != nil {
		return nil, err
	}

	resp := channelResponse(*ch, total, completed, relevant)
	if err := s.cache.SetChannel(ctx, channelID, resp); err != nil {
		log.Printf("channel service: cache write failed for %s: %v", channelID, err)
	}
	return &resp, nil
}

func channelResponse(ch model.Channel, total, completed, relevant int) model.ChannelResponse {
	return model.ChannelResponse{
		ChannelID:       ch.ChannelID,
		ChannelName:     ch.ChannelName,
		IsActive:        ch.IsActive,
		TotalVideos:     total,
		CompletedVideos: completed,
		RelevantVideos:  relevant,
		LastUpdated:     ch.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
