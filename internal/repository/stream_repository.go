package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/xpilot/internal/models"
)

type StreamRepository interface {
	Create(ctx context.Context, s *models.Stream) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Stream, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Stream, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Remove(ctx context.Context, id int64) error
	AddResult(ctx context.Context, res *models.StreamResult) (int64, error)
	ListResults(ctx context.Context, streamID int64) ([]*models.StreamResult, error)
}

type streamRepository struct {
	db *sql.DB
}

func NewStreamRepository(db *sql.DB) StreamRepository {
	return &streamRepository{db: db}
}

func (r *streamRepository) Create(ctx context.Context, s *models.Stream) (int64, error) {
	query := `
		INSERT INTO streams (user_id, name, rules, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.Name, s.Rules, s.Active).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return s.ID, nil
}

func (r *streamRepository) GetByID(ctx context.Context, id int64) (*models.Stream, error) {
	query := `SELECT id, user_id, name, rules, created_at, last_run, active FROM streams WHERE id = $1`

	var s models.Stream
	var lastRun sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.Name, &s.Rules, &s.CreatedAt, &lastRun, &s.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	if lastRun.Valid {
		s.LastRun = &lastRun.Time
	}
	return &s, nil
}

func (r *streamRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Stream, error) {
	query := `SELECT id, user_id, name, rules, created_at, last_run, active FROM streams WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	streams := []*models.Stream{}
	for rows.Next() {
		var s models.Stream
		var lastRun sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Rules, &s.CreatedAt, &lastRun, &s.Active); err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if lastRun.Valid {
			s.LastRun = &lastRun.Time
		}
		streams = append(streams, &s)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return streams, nil
}

func (r *streamRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE streams SET active = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *streamRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM streams WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *streamRepository) AddResult(ctx context.Context, res *models.StreamResult) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO stream_results (stream_id, tweet_id, tweet_text, author_id, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery, res.StreamID, res.TweetID, res.TweetText, res.AuthorID, res.Data).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE streams SET last_run = CURRENT_TIMESTAMP WHERE id = $1`, res.StreamID); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.ID, nil
}

func (r *streamRepository) ListResults(ctx context.Context, streamID int64) ([]*models.StreamResult, error) {
	query := `
		SELECT id, stream_id, tweet_id, tweet_text, author_id, created_at, data
		FROM stream_results
		WHERE stream_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, streamID)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	results := []*models.StreamResult{}
	for rows.Next() {
		var res models.StreamResult
		var data sql.NullString
		if err := rows.Scan(&res.ID, &res.StreamID, &res.TweetID, &res.TweetText, &res.AuthorID, &res.CreatedAt, &data); err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if data.Valid {
			res.Data = &data.String
		}
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return results, nil
}
