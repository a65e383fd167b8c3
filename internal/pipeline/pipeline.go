package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

// Pipeline drives one end-to-end ingestion execution: enumerate active
// channels, list each channel's recent videos, and run the per-video
// transcription/classification state machine. Channels and videos are
// processed sequentially; acquisition and transcription are rate-limited
// disk-bound operations, so one video at a time keeps temp-file handling
// trivial.
type Pipeline struct {
	channels    ChannelStore
	videos      VideoStore
	runs        RunStore
	lister      Lister
	audio       AudioProcessor
	transcriber Transcriber
	classifier  Classifier
	lookback    time.Duration
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Channels    ChannelStore
	Videos      VideoStore
	Runs        RunStore
	Lister      Lister
	Audio       AudioProcessor
	Transcriber Transcriber
	Classifier  Classifier
}

// New creates a pipeline with the given collaborators and lookback window.
func New(d Deps, lookback time.Duration) *Pipeline {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &Pipeline{
		channels:    d.Channels,
		videos:      d.Videos,
		runs:        d.Runs,
		lister:      d.Lister,
		audio:       d.Audio,
		transcriber: d.Transcriber,
		classifier:  d.Classifier,
		lookback:    lookback,
	}
}

// Run executes one full ingestion pass and records it as a Run. Errors
// inside a channel or a video are isolated and logged; only failures of
// the run bookkeeping itself (or of the active-channel enumeration) fail
// the run and propagate to the caller.
func (p *Pipeline) Run(ctx context.Context) (*model.Run, error) {
	run, err := p.runs.Create(ctx, model.JobTypeDailyTranscription)
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	log.Printf("pipeline: run %d started", run.ID)

	channels, err := p.channels.FindActive(ctx)
	if err != nil {
		return p.failRun(ctx, run, fmt.Errorf("list active channels: %w", err))
	}
	log.Printf("pipeline: run %d: %d active channels", run.ID, len(channels))

	processed := 0
	for _, ch := range channels {
		count, err := p.processChannel(ctx, ch)
		if err != nil {
			log.Printf("pipeline: channel %s: %v", ch.ChannelID, err)
			continue
		}
		processed += count
	}

	meta := map[string]any{"channelsProcessed": len(channels)}
	if err := p.runs.MarkSuccess(ctx, run.ID, processed, meta); err != nil {
		return p.failRun(ctx, run, fmt.Errorf("finalize run record: %w", err))
	}

	now := time.Now().UTC()
	run.Status = model.RunSuccess
	run.FinishedAt = &now
	run.VideosProcessed = processed
	run.Meta = meta

	Metrics.RunsTotal.WithLabelValues(string(model.RunSuccess)).Inc()
	Metrics.VideosProcessed.Add(float64(processed))
	log.Printf("pipeline: run %d completed — %d videos processed across %d channels",
		run.ID, processed, len(channels))
	return run, nil
}

// failRun marks the run failed and propagates the orchestrator-level error.
func (p *Pipeline) failRun(ctx context.Context, run *model.Run, cause error) (*model.Run, error) {
	if err := p.runs.MarkFailed(ctx, run.ID, cause.Error()); err != nil {
		log.Printf("pipeline: run %d: could not record failure: %v", run.ID, err)
	}

	now := time.Now().UTC()
	run.Status = model.RunFailed
	run.FinishedAt = &now
	run.ErrorMessage = cause.Error()

	Metrics.RunsTotal.WithLabelValues(string(model.RunFailed)).Inc()
	log.Printf("pipeline: run %d failed: %v", run.ID, cause)
	return run, cause
}

// processChannel lists one channel's recent videos and walks them in the
// order returned. Returns how many videos were newly processed.
func (p *Pipeline) processChannel(ctx context.Context, ch model.Channel) (int, error) {
	listings, err := p.lister.ListRecentVideos(ctx, ch.ChannelID, p.lookback)
	if err != nil {
		Metrics.StageFailures.WithLabelValues("list").Inc()
		return 0, fmt.Errorf("list recent videos: %w", err)
	}
	log.Printf("pipeline: channel %s: %d recent videos", ch.ChannelID, len(listings))

	processed := 0
	for _, listing := range listings {
		counted, err := p.processVideo(ctx, ch, listing)
		if err != nil {
			log.Printf("pipeline: video %s: %v", listing.ID, err)
			continue
		}
		if counted {
			processed++
		}
	}
	return processed, nil
}

// processVideo runs the per-video state machine for one listing. It
// returns true only when the video newly reached the transcript-completed
// commit during this run; previously completed videos are skipped without
// any collaborator calls.
func (p *Pipeline) processVideo(ctx context.Context, ch model.Channel, listing VideoListing) (bool, error) {
	video, err := p.videos.FindByYoutubeVideoID(ctx, listing.ID)
	if err != nil {
		return false, fmt.Errorf("lookup video: %w", err)
	}

	if video == nil {
		video, err = p.videos.Create(ctx, &model.Video{
			YoutubeVideoID:   listing.ID,
			ChannelID:        ch.ChannelID,
			Title:            listing.Title,
			Description:      listing.Description,
			PublishedAt:      listing.PublishedAt,
			TranscriptStatus: model.TranscriptNotStarted,
		})
		if err != nil {
			return false, fmt.Errorf("create video record: %w", err)
		}
		log.Printf("pipeline: video %s: created record %d", listing.ID, video.ID)
	} else if video.TranscriptStatus == model.TranscriptCompleted {
		return false, nil
	}

	if err := p.transcribeAndAnalyze(ctx, ch, video); err != nil {
		return false, err
	}
	return true, nil
}

// transcribeAndAnalyze runs acquisition → encoding → transcription →
// classification for one video. The transcript commit happens before
// classification so a classification failure never discards a usable
// transcript; errors after that commit are logged, not returned.
func (p *Pipeline) transcribeAndAnalyze(ctx context.Context, ch model.Channel, video *model.Video) error {
	if err := p.videos.UpdateTranscriptStatus(ctx, video.ID, model.TranscriptInProgress); err != nil {
		return fmt.Errorf("mark in_progress: %w", err)
	}

	var audioPath, mp3Path string
	defer func() {
		p.release(video.YoutubeVideoID, audioPath)
		if mp3Path != audioPath {
			p.release(video.YoutubeVideoID, mp3Path)
		}
	}()

	var err error
	audioPath, err = p.stageAcquire(ctx, video)
	if err != nil {
		return p.failVideo(ctx, video, "acquire audio", err)
	}

	mp3Path = p.audio.TempFilePath("mp3")
	if err := p.audio.EncodeToMP3(ctx, audioPath, mp3Path); err != nil {
		Metrics.StageFailures.WithLabelValues("encode").Inc()
		return p.failVideo(ctx, video, "encode audio", err)
	}

	transcript, err := p.stageTranscribe(ctx, video, mp3Path)
	if err != nil {
		return p.failVideo(ctx, video, "transcribe", err)
	}

	if err := p.videos.UpdateTranscript(ctx, video.ID, transcript, model.TranscriptCompleted); err != nil {
		return p.failVideo(ctx, video, "commit transcript", err)
	}

	// Transcript is durable from here on. A transcribed-but-unclassified
	// video is a valid outcome for this run.
	result, err := p.stageClassify(ctx, ch, video, transcript)
	if err != nil {
		log.Printf("pipeline: video %s: classification failed, keeping transcript: %v",
			video.YoutubeVideoID, err)
		return nil
	}

	if err := p.videos.UpdateAnalysis(ctx, video.ID, result.IsKPRelated, result.Analysis); err != nil {
		log.Printf("pipeline: video %s: persist analysis failed, keeping transcript: %v",
			video.YoutubeVideoID, err)
	}
	return nil
}

func (p *Pipeline) stageAcquire(ctx context.Context, video *model.Video) (string, error) {
	start := time.Now()
	path, err := p.audio.AcquireAudio(ctx, video.YoutubeVideoID)
	if err != nil {
		Metrics.StageFailures.WithLabelValues("acquire").Inc()
		return "", err
	}
	Metrics.StageDuration.WithLabelValues("acquire").Observe(time.Since(start).Seconds())
	return path, nil
}

func (p *Pipeline) stageTranscribe(ctx context.Context, video *model.Video, mp3Path string) (string, error) {
	start := time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, mp3Path)
	if err != nil {
		Metrics.StageFailures.WithLabelValues("transcribe").Inc()
		return "", err
	}
	Metrics.StageDuration.WithLabelValues("transcribe").Observe(time.Since(start).Seconds())
	return transcript, nil
}

func (p *Pipeline) stageClassify(ctx context.Context, ch model.Channel, video *model.Video, transcript string) (*Classification, error) {
	start := time.Now()
	result, err := p.classifier.Classify(ctx, transcript, ClassifyMetadata{
		Title:       video.Title,
		ChannelName: ch.ChannelName,
		PublishedAt: video.PublishedAt,
	})
	if err != nil {
		Metrics.StageFailures.WithLabelValues("classify").Inc()
		return nil, err
	}
	Metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
	return result, nil
}

// failVideo marks the video failed and wraps the stage error for the
// per-video error boundary in processChannel.
func (p *Pipeline) failVideo(ctx context.Context, video *model.Video, stage string, cause error) error {
	if err := p.videos.UpdateTranscriptStatus(ctx, video.ID, model.TranscriptFailed); err != nil {
		log.Printf("pipeline: video %s: mark failed after %s error: %v",
			video.YoutubeVideoID, stage, err)
	}
	return fmt.Errorf("%s: %w", stage, cause)
}

func (p *Pipeline) release(youtubeVideoID, path string) {
	if path == "" {
		return
	}
	if err := p.audio.ReleaseFile(path); err != nil {
		log.Printf("pipeline: video %s: release %s: %v", youtubeVideoID, path, err)
	}
}
