package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmpocmkp/kptube-go/internal/model"
)

type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

const runColumns = `
	id, job_type, started_at, finished_at, status,
	videos_processed, error_message, meta`

func scanRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var errMsg *string
	var metaJSON []byte
	err := row.Scan(
		&run.ID, &run.JobType, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.VideosProcessed, &errMsg, &metaJSON,
	)
	if err != nil {
		return nil, err
	}
	if errMsg != nil {
		run.ErrorMessage = *errMsg
	}
	if len(metaJSON) > 0 {
		_ = json.Unmarshal(metaJSON, &run.Meta)
	}
	return &run, nil
}

// Create inserts a new run in running state and returns it.
func (r *RunRepo) Create(ctx context.Context, jobType string) (*model.Run, error) {
	query := `
		INSERT INTO runs (job_type, started_at, status, videos_processed)
		VALUES ($1, NOW(), 'running', 0)
		RETURNING ` + runColumns

	return scanRun(r.pool.QueryRow(ctx, query, jobType))
}

// MarkSuccess transitions a run to its terminal success state.
func (r *RunRepo) MarkSuccess(ctx context.Context, id int64, videosProcessed int, meta map[string]any) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	query := `
		UPDATE runs
		SET status = 'success', finished_at = NOW(),
		    videos_processed = $1, meta = $2
		WHERE id = $3 AND status = 'running'`

	_, err = r.pool.Exec(ctx, query, videosProcessed, metaJSON, id)
	return err
}

// MarkFailed transitions a run to its terminal failed state with the
// orchestrator-level error message.
func (r *RunRepo) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `
		UPDATE runs
		SET status = 'failed', finished_at = NOW(), error_message = $1
		WHERE id = $2 AND status = 'running'`

	_, err := r.pool.Exec(ctx, query, errMsg, id)
	return err
}

// FindByID returns a single run by ID.
func (r *RunRepo) FindByID(ctx context.Context, id int64) (*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// FindLatest returns the most recently started run, or (nil, nil) when no
// run has ever happened.
func (r *RunRepo) FindLatest(ctx context.Context) (*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT 1`

	run, err := scanRun(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// List returns runs matching the query filters, newest first, with the
// total count for pagination.
func (r *RunRepo) List(ctx context.Context, q model.RunListQuery) ([]model.Run, int, error) {
	var conds []string
	var args []any

	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.StartDate != nil {
		args = append(args, *q.StartDate)
		conds = append(conds, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if q.EndDate != nil {
		args = append(args, *q.EndDate)
		conds = append(conds, fmt.Sprintf("started_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(
		"SELECT %s FROM runs%s ORDER BY started_at DESC LIMIT $%d OFFSET $%d",
		runColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *run)
	}
	return runs, total, rows.Err()
}
