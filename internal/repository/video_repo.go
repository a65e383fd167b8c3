package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `
	id, youtube_video_id, channel_id, title, description, published_at,
	transcript, transcript_status, last_transcribed_at, is_kp_related,
	analysis, created_at, updated_at`

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	var analysisJSON []byte
	err := row.Scan(
		&v.ID, &v.YoutubeVideoID, &v.ChannelID, &v.Title, &v.Description, &v.PublishedAt,
		&v.Transcript, &v.TranscriptStatus, &v.LastTranscribedAt, &v.IsKPRelated,
		&analysisJSON, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(analysisJSON) > 0 {
		var a model.VideoAnalysis
		if err := json.Unmarshal(analysisJSON, &a); err == nil {
			v.Analysis = &a
		}
	}
	return &v, nil
}

// FindByYoutubeVideoID returns a video by its external YouTube ID, or
// (nil, nil) if no such video exists yet.
func (r *VideoRepo) FindByYoutubeVideoID(ctx context.Context, youtubeVideoID string) (*model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE youtube_video_id = $1`

	v, err := scanVideo(r.pool.QueryRow(ctx, query, youtubeVideoID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// FindByID returns a video by its internal numeric ID.
func (r *VideoRepo) FindByID(ctx context.Context, id int64) (*model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return scanVideo(r.pool.QueryRow(ctx, query, id))
}

// FindByChannelID returns list-view summaries for a channel, newest first.
func (r *VideoRepo) FindByChannelID(ctx context.Context, channelID string) ([]model.VideoSummary, error) {
	query := `
		SELECT id, youtube_video_id, channel_id, title, published_at,
		       transcript_status, is_kp_related
		FROM videos
		WHERE channel_id = $1
		ORDER BY published_at DESC`

	rows, err := r.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.VideoSummary
	for rows.Next() {
		var v model.VideoSummary
		err := rows.Scan(&v.ID, &v.YoutubeVideoID, &v.ChannelID, &v.Title,
			&v.PublishedAt, &v.TranscriptStatus, &v.IsKPRelated)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Create inserts a newly sighted video in not_started and returns it with
// its assigned ID.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) (*model.Video, error) {
	query := `
		INSERT INTO videos (youtube_video_id, channel_id, title, description,
		                    published_at, transcript_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + videoColumns

	if v.TranscriptStatus == "" {
		v.TranscriptStatus = model.TranscriptNotStarted
	}
	return scanVideo(r.pool.QueryRow(ctx, query,
		v.YoutubeVideoID, v.ChannelID, v.Title, v.Description, v.PublishedAt, v.TranscriptStatus))
}

// UpdateTranscriptStatus moves a video to the given state.
func (r *VideoRepo) UpdateTranscriptStatus(ctx context.Context, id int64, status model.TranscriptStatus) error {
	query := `
		UPDATE videos
		SET transcript_status = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, status, id)
	return err
}

// UpdateTranscript commits the transcript, status and last_transcribed_at
// in a single statement. This is the durability point of the per-video
// state machine: it must land before classification is attempted.
func (r *VideoRepo) UpdateTranscript(ctx context.Context, id int64, transcript string, status model.TranscriptStatus) error {
	query := `
		UPDATE videos
		SET transcript = $1, transcript_status = $2,
		    last_transcribed_at = NOW(), updated_at = NOW()
		WHERE id = $3`

	_, err := r.pool.Exec(ctx, query, transcript, status, id)
	return err
}

// UpdateAnalysis writes the relevance flag and the three-entity analysis.
func (r *VideoRepo) UpdateAnalysis(ctx context.Context, id int64, isKPRelated bool, analysis *model.VideoAnalysis) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return err
	}

	query := `
		UPDATE videos
		SET is_kp_related = $1, analysis = $2, updated_at = NOW()
		WHERE id = $3`

	_, err = r.pool.Exec(ctx, query, isKPRelated, analysisJSON, id)
	return err
}

// ResetForReanalysis clears transcript, analysis and relevance and puts
// the video back to not_started so the next run picks it up.
func (r *VideoRepo) ResetForReanalysis(ctx context.Context, id int64) error {
	query := `
		UPDATE videos
		SET transcript = '', transcript_status = 'not_started',
		    is_kp_related = false, analysis = NULL,
		    last_transcribed_at = NULL, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountByStatus returns video counts grouped by transcript status.
func (r *VideoRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT transcript_status, COUNT(*)
		FROM videos
		GROUP BY transcript_status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountRelevant returns the number of videos flagged as KP-related.
func (r *VideoRepo) CountRelevant(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE is_kp_related = true`).Scan(&n)
	return n, err
}
