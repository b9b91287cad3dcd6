package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/xpilot/internal/metrics"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

const MonthlyLimit = 1500

// Call types recorded in the quota ledger. Only CallPost consumes quota.
const (
	CallPost        = "post"
	CallProfileView = "profile_view"
	CallSearch      = "search"
	CallUserView    = "user_view"
	CallFollow      = "follow"
	CallUnfollow    = "unfollow"
	CallVerify      = "verify"
)

const resetDateLayout = "2006-01-02"

type QuotaService interface {
	// GetStatus reports usage for the current month. The period row is
	// created with zero usage on first access.
	GetStatus(ctx context.Context, userID int64) (*transfer.QuotaStatus, error)
	TrackCall(ctx context.Context, userID int64, callType string) (*transfer.QuotaStatus, error)
	EnsurePeriodInitialized(ctx context.Context, userID int64) (*models.QuotaUsage, error)
	// History lists every recorded period, newest first.
	History(ctx context.Context, userID int64) ([]*transfer.QuotaPeriod, error)
}

type quotaService struct {
	qr      repository.QuotaRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewQuotaService(qr repository.QuotaRepository, m *metrics.Metrics, logger *slog.Logger, now func() time.Time) QuotaService {
	if now == nil {
		now = time.Now
	}
	return &quotaService{qr: qr, metrics: m, logger: logger, now: now}
}

func (s *quotaService) GetStatus(ctx context.Context, userID int64) (*transfer.QuotaStatus, error) {
	usage, err := s.EnsurePeriodInitialized(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewQuotaStatus(usage), nil
}

func (s *quotaService) TrackCall(ctx context.Context, userID int64, callType string) (*transfer.QuotaStatus, error) {
	usage, err := s.EnsurePeriodInitialized(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveQuota(callType)
	if callType != CallPost {
		s.logger.Info("api call tracked", "user_id", userID, "call_type", callType)
		return NewQuotaStatus(usage), nil
	}

	used, err := s.qr.Increment(ctx, usage.ID)
	if err != nil {
		return nil, fmt.Errorf("increment quota: %w", err)
	}
	usage.PostsUsed = used
	s.logger.Info("post quota consumed", "user_id", userID, "posts_used", used)
	return NewQuotaStatus(usage), nil
}

func (s *quotaService) EnsurePeriodInitialized(ctx context.Context, userID int64) (*models.QuotaUsage, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	now := s.now().UTC()
	usage, err := s.qr.GetOrCreate(ctx, userID, int(now.Month()), now.Year(), ResetDate(now))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrInvalidUser
		}
		return nil, fmt.Errorf("load quota period: %w", err)
	}
	return usage, nil
}

func (s *quotaService) History(ctx context.Context, userID int64) ([]*transfer.QuotaPeriod, error) {
	rows, err := s.qr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list quota periods: %w", err)
	}

	periods := make([]*transfer.QuotaPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, &transfer.QuotaPeriod{
			Month:      row.Month,
			Year:       row.Year,
			PostsUsed:  row.PostsUsed,
			Limit:      MonthlyLimit,
			Percentage: Percentage(row.PostsUsed, MonthlyLimit),
			ResetDate:  row.ResetDate,
		})
	}
	return periods, nil
}

// ResetDate is the first day of the month after t, formatted YYYY-MM-DD.
func ResetDate(t time.Time) string {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).Format(resetDateLayout)
}

// Percentage is used/limit rounded half away from zero and capped at 100.
func Percentage(used, limit int) int {
	if limit <= 0 || used <= 0 {
		return 0
	}
	p := int(math.Round(float64(used) / float64(limit) * 100))
	if p > 100 {
		return 100
	}
	return p
}

func NewQuotaStatus(usage *models.QuotaUsage) *transfer.QuotaStatus {
	return &transfer.QuotaStatus{
		PostsUsed:  usage.PostsUsed,
		Limit:      MonthlyLimit,
		Percentage: Percentage(usage.PostsUsed, MonthlyLimit),
		ResetDate:  usage.ResetDate,
	}
}
