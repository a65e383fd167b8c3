package model

import "time"

// Channel is a monitored YouTube channel. Channels are managed by an
// out-of-band admin surface; the pipeline only reads them.
type Channel struct {
	ChannelID   string    `json:"channelId"`
	ChannelName string    `json:"channelName"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChannelResponse is the API response for channel lookups, including
// per-channel video aggregates.
type ChannelResponse struct {
	ChannelID       string `json:"channelId"`
	ChannelName     string `json:"channelName"`
	IsActive        bool   `json:"isActive"`
	TotalVideos     int    `json:"totalVideos"`
	CompletedVideos int    `json:"completedVideos"`
	RelevantVideos  int    `json:"relevantVideos"`
	LastUpdated     string `json:"lastUpdated"`
}
