package model

import (
	"math"
	"time"
)

// TranscriptStatus is the per-video processing state machine. Completed
// videos are skipped on later runs; not_started, in_progress and failed
// videos are picked up again.
type TranscriptStatus string

const (
	TranscriptNotStarted TranscriptStatus = "not_started"
	TranscriptInProgress TranscriptStatus = "in_progress"
	TranscriptCompleted  TranscriptStatus = "completed"
	TranscriptFailed     TranscriptStatus = "failed"
)

// SentimentLabel is the classifier's per-entity verdict.
type SentimentLabel string

const (
	SentimentPositive     SentimentLabel = "positive"
	SentimentNegative     SentimentLabel = "negative"
	SentimentNeutral      SentimentLabel = "neutral"
	SentimentMixed        SentimentLabel = "mixed"
	SentimentNotMentioned SentimentLabel = "not_mentioned"
)

// NormalizeLabel maps an arbitrary classifier label onto a known
// SentimentLabel. Unrecognized labels fall back to neutral; the second
// return reports whether the input was already valid.
func NormalizeLabel(label string) (SentimentLabel, bool) {
	switch SentimentLabel(label) {
	case SentimentPositive, SentimentNegative, SentimentNeutral,
		SentimentMixed, SentimentNotMentioned:
		return SentimentLabel(label), true
	}
	return SentimentNeutral, false
}

// ClampConfidence forces a classifier confidence into [0,1].
// NaN (including values the classifier never set) becomes 0.5.
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0.5
	}
	return math.Max(0, math.Min(1, c))
}

// SentimentAnalysis is one entity's sentiment judgment. It is an owned
// value embedded in VideoAnalysis, never stored on its own.
type SentimentAnalysis struct {
	SentimentLabel SentimentLabel `json:"sentimentLabel"`
	Confidence     float64        `json:"confidence"`
	Explanation    string         `json:"explanation"`
}

// VideoAnalysis composes the three tracked-entity judgments.
type VideoAnalysis struct {
	CmKp         *SentimentAnalysis `json:"cmKp,omitempty"`
	KpGovernment *SentimentAnalysis `json:"kpGovernment,omitempty"`
	ImranKhan    *SentimentAnalysis `json:"imranKhan,omitempty"`
}

// Video is the pipeline's unit of work. One row per distinct YouTube
// video ID; created on first sighting, mutated only by the pipeline or an
// explicit reanalysis request, never deleted.
type Video struct {
	ID                int64            `json:"id"`
	YoutubeVideoID    string           `json:"youtubeVideoId"`
	ChannelID         string           `json:"channelId"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	PublishedAt       time.Time        `json:"publishedAt"`
	Transcript        string           `json:"transcript"`
	TranscriptStatus  TranscriptStatus `json:"transcriptStatus"`
	LastTranscribedAt *time.Time       `json:"lastTranscribedAt,omitempty"`
	IsKPRelated       bool             `json:"isKPRelated"`
	Analysis          *VideoAnalysis   `json:"analysis,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// VideoSummary is the list-view API shape: no transcript body, no
// per-entity explanations.
type VideoSummary struct {
	ID               int64            `json:"id"`
	YoutubeVideoID   string           `json:"youtubeVideoId"`
	ChannelID        string           `json:"channelId"`
	Title            string           `json:"title"`
	PublishedAt      time.Time        `json:"publishedAt"`
	TranscriptStatus TranscriptStatus `json:"transcriptStatus"`
	IsKPRelated      bool             `json:"isKPRelated"`
}

// StatsResponse is the API response for aggregate platform statistics.
type StatsResponse struct {
	TotalVideos    int            `json:"totalVideos"`
	TotalChannels  int            `json:"totalChannels"`
	ActiveChannels int            `json:"activeChannels"`
	RelevantVideos int            `json:"relevantVideos"`
	ByStatus       map[string]int `json:"byStatus"`
	LastRunAt      *time.Time     `json:"lastRunAt,omitempty"`
	LastRunStatus  string         `json:"lastRunStatus,omitempty"`
}
