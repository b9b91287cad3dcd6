package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/xpilot/internal/models"
)

type QuotaRepository interface {
	GetOrCreate(ctx context.Context, userID int64, month, year int, resetDate string) (*models.QuotaUsage, error)
	Increment(ctx context.Context, id int64) (int, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.QuotaUsage, error)
}

type quotaRepository struct {
	db *sql.DB
}

func NewQuotaRepository(db *sql.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

// GetOrCreate materializes the (user, month, year) row with zero usage the
// first time a period is touched. Concurrent first accesses converge on the
// same row through the unique constraint.
func (r *quotaRepository) GetOrCreate(ctx context.Context, userID int64, month, year int, resetDate string) (*models.QuotaUsage, error) {
	insertQuery := `
		INSERT INTO quota_usage (user_id, month, year, posts_used, reset_date)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (user_id, month, year) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insertQuery, userID, month, year, resetDate); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	selectQuery := `
		SELECT id, user_id, month, year, posts_used, reset_date
		FROM quota_usage
		WHERE user_id = $1 AND month = $2 AND year = $3
	`
	var q models.QuotaUsage
	err := r.db.QueryRowContext(ctx, selectQuery, userID, month, year).Scan(&q.ID, &q.UserID, &q.Month, &q.Year, &q.PostsUsed, &q.ResetDate)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &q, nil
}

func (r *quotaRepository) Increment(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE quota_usage
		SET posts_used = posts_used + 1
		WHERE id = $1
		RETURNING posts_used
	`
	var used int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Info("quota row disappeared before increment")
		} else {
			slog.Info(err.Error())
		}
		return 0, err
	}
	return used, nil
}

func (r *quotaRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.QuotaUsage, error) {
	query := `
		SELECT id, user_id, month, year, posts_used, reset_date
		FROM quota_usage
		WHERE user_id = $1
		ORDER BY year DESC, month DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	usage := []*models.QuotaUsage{}
	for rows.Next() {
		var q models.QuotaUsage
		if err := rows.Scan(&q.ID, &q.UserID, &q.Month, &q.Year, &q.PostsUsed, &q.ResetDate); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		usage = append(usage, &q)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return usage, nil
}
