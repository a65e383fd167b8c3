package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// FindActive returns all channels the pipeline should walk, ordered by name.
func (r *ChannelRepo) FindActive(ctx context.Context) ([]model.Channel, error) {
	query := `
		SELECT channel_id, channel_name, is_active, created_at, updated_at
		FROM channels
		WHERE is_active = true
		ORDER BY channel_name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		var ch model.Channel
		err := rows.Scan(&ch.ChannelID, &ch.ChannelName, &ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// FindAll returns every monitored channel, active or not.
func (r *ChannelRepo) FindAll(ctx context.Context) ([]model.Channel, error) {
	query := `
		SELECT channel_id, channel_name, is_active, created_at, updated_at
		FROM channels
		ORDER BY channel_name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		var ch model.Channel
		err := rows.Scan(&ch.ChannelID, &ch.ChannelName, &ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// FindByChannelID returns a single channel by its YouTube channel ID.
func (r *ChannelRepo) FindByChannelID(ctx context.Context, channelID string) (*model.Channel, error) {
	query := `
		SELECT channel_id, channel_name, is_active, created_at, updated_at
		FROM channels
		WHERE channel_id = $1`

	var ch model.Channel
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.ChannelName, &ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Counts returns the total and active channel counts.
func (r *ChannelRepo) Counts(ctx context.Context) (total, active int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active = true)
		FROM channels`

	err = r.pool.QueryRow(ctx, query).Scan(&total, &active)
	return total, active, err
}

// VideoAggregates returns per-channel video counts for channel lookups.
func (r *ChannelRepo) VideoAggregates(ctx context.Context, channelID string) (total, completed, relevant int, err error) {
	query := `
		SELECT
			COUNT(*)                                                   AS total,
			COUNT(*) FILTER (WHERE transcript_status = 'completed')    AS completed,
			COUNT(*) FILTER (WHERE is_kp_related = true)               AS relevant
		FROM videos
		WHERE channel_id = $1`

	err = r.pool.QueryRow(ctx, query, channelID).Scan(&total, &completed, &relevant)
	return total, completed, relevant, err
}
