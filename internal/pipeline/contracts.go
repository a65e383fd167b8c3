package pipeline

import (
	"context"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

// VideoListing is one candidate video returned by a Lister.
type VideoListing struct {
	ID          string
	Title       string
	Description string
	PublishedAt time.Time
}

// Lister enumerates videos published on a channel within the lookback
// window, newest first. Window filtering is the lister's contract; the
// pipeline does not re-validate it.
type Lister interface {
	ListRecentVideos(ctx context.Context, channelID string, lookback time.Duration) ([]VideoListing, error)
}

// AudioProcessor acquires and normalizes a video's audio on local disk.
// Every path it hands out is owned by the caller until released;
// ReleaseFile is idempotent and ignores already-deleted files.
type AudioProcessor interface {
	AcquireAudio(ctx context.Context, youtubeVideoID string) (string, error)
	EncodeToMP3(ctx context.Context, inputPath, outputPath string) error
	TempFilePath(ext string) string
	ReleaseFile(path string) error
}

// Transcriber produces the full text transcript of an encoded audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ClassifyMetadata is the video context passed alongside the transcript.
type ClassifyMetadata struct {
	Title       string
	ChannelName string
	PublishedAt time.Time
}

// Classification is the classifier's structured verdict.
type Classification struct {
	IsKPRelated bool
	Analysis    *model.VideoAnalysis
}

// Classifier judges a transcript's topical relevance and per-entity sentiment.
type Classifier interface {
	Classify(ctx context.Context, transcript string, meta ClassifyMetadata) (*Classification, error)
}

// ChannelStore provides the channels the pipeline walks.
type ChannelStore interface {
	FindActive(ctx context.Context) ([]model.Channel, error)
}

// VideoStore persists per-video state. Each call is a single-record
// atomic operation.
type VideoStore interface {
	FindByYoutubeVideoID(ctx context.Context, youtubeVideoID string) (*model.Video, error)
	Create(ctx context.Context, v *model.Video) (*model.Video, error)
	UpdateTranscriptStatus(ctx context.Context, id int64, status model.TranscriptStatus) error
	UpdateTranscript(ctx context.Context, id int64, transcript string, status model.TranscriptStatus) error
	UpdateAnalysis(ctx context.Context, id int64, isKPRelated bool, analysis *model.VideoAnalysis) error
}

// RunStore persists run audit records.
type RunStore interface {
	Create(ctx context.Context, jobType string) (*model.Run, error)
	MarkSuccess(ctx context.Context, id int64, videosProcessed int, meta map[string]any) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}
