package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/metrics"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

const (
	StandardCharLimit = 280
	ElevatedCharLimit = 4000
)

var scheduleLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}

type PostService interface {
	Compose(ctx context.Context, user *models.User, in *transfer.PostComposition, files []*multipart.FileHeader) (*transfer.ComposeResult, error)
	ComposeInfo(ctx context.Context, user *models.User) (*transfer.ComposeInfo, error)
	Delete(ctx context.Context, user *models.User, postID int64) (*transfer.DeleteResult, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	Scheduled(ctx context.Context, userID int64) ([]*models.Post, error)
	CountByStatus(ctx context.Context, userID int64) (map[string]int, error)
}

type postService struct {
	pr      repository.PostRepository
	quota   QuotaService
	x       XClient
	media   MediaService
	cipher  credentialCipher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewPostService(
	cfg config.Config,
	pr repository.PostRepository,
	quota QuotaService,
	x XClient,
	media MediaService,
	m *metrics.Metrics,
	logger *slog.Logger,
	now func() time.Time) PostService {
	if now == nil {
		now = time.Now
	}
	return &postService{
		pr:      pr,
		quota:   quota,
		x:       x,
		media:   media,
		cipher:  newCredentialCipher(cfg.SecretKey),
		metrics: m,
		logger:  logger,
		now:     now,
	}
}

// CharLimit is the maximum post length for the account tier.
func CharLimit(elevated bool) int {
	if elevated {
		return ElevatedCharLimit
	}
	return StandardCharLimit
}

// ValidateComposition returns the trimmed text and, when scheduling was
// requested, the UTC instant to publish at. Checks run in a fixed order:
// empty, length, schedule. Date and time are ignored unless Schedule is set.
func ValidateComposition(in *transfer.PostComposition, now time.Time) (string, *time.Time, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", nil, ErrContentEmpty
	}

	limit := CharLimit(in.Elevated)
	if utf8.RuneCountInString(text) > limit {
		return "", nil, fmt.Errorf("%w: maximum is %d characters", ErrExceedsLimit, limit)
	}

	if !in.Schedule {
		return text, nil, nil
	}
	date := strings.TrimSpace(in.ScheduleDate)
	clock := strings.TrimSpace(in.ScheduleTime)
	if date == "" || clock == "" {
		return "", nil, ErrInvalidSchedule
	}

	var at time.Time
	var err error
	for _, layout := range scheduleLayouts {
		at, err = time.ParseInLocation(layout, date+" "+clock, time.UTC)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s %s", ErrInvalidSchedule, date, clock)
	}
	if !at.After(now.UTC()) {
		return "", nil, fmt.Errorf("%w: %s is not in the future", ErrInvalidSchedule, at.Format(time.RFC3339))
	}
	return text, &at, nil
}

func (s *postService) Compose(ctx context.Context, user *models.User, in *transfer.PostComposition, files []*multipart.FileHeader) (*transfer.ComposeResult, error) {
	if in == nil {
		return nil, ErrContentEmpty
	}
	in.Elevated = in.Elevated || user.Elevated()

	text, scheduledAt, err := ValidateComposition(in, s.now())
	if err != nil {
		return nil, err
	}

	if scheduledAt != nil {
		return s.schedule(ctx, user, text, *scheduledAt, files)
	}
	return s.publish(ctx, user, text, files)
}

func (s *postService) schedule(ctx context.Context, user *models.User, text string, at time.Time, files []*multipart.FileHeader) (*transfer.ComposeResult, error) {
	post := models.NewScheduledPost(user.ID, text, at)
	if err := s.attachMedia(ctx, user.ID, post, files); err != nil {
		return nil, err
	}

	if _, err := s.pr.Create(ctx, post); err != nil {
		s.media.Discard(ctx, post.Media())
		return nil, fmt.Errorf("save scheduled post: %w", err)
	}
	s.metrics.ObservePost(post.Status)
	s.logger.Info("post scheduled", "user_id", user.ID, "post_id", post.ID, "scheduled_at", at)

	return &transfer.ComposeResult{
		Post:    post,
		Message: fmt.Sprintf("Post scheduled for %s UTC", at.Format("2006-01-02 15:04")),
	}, nil
}

func (s *postService) publish(ctx context.Context, user *models.User, text string, files []*multipart.FileHeader) (*transfer.ComposeResult, error) {
	status, err := s.quota.GetStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if status.Exhausted() {
		return nil, fmt.Errorf("%w: %d of %d posts used, resets %s", ErrQuotaExceeded, status.PostsUsed, status.Limit, status.ResetDate)
	}

	creds, err := s.cipher.completeCredentials(user)
	if err != nil {
		return nil, err
	}

	post := &models.Post{}
	if err := s.attachMedia(ctx, user.ID, post, files); err != nil {
		return nil, err
	}

	remoteID, err := s.x.CreatePost(ctx, creds, text)
	if err != nil {
		s.media.Discard(ctx, post.Media())
		s.metrics.ObservePost(models.PostStatusFailed)
		return nil, &RemoteError{Op: "publish post", Err: err}
	}

	published := models.NewPublishedPost(user.ID, text, remoteID, s.now())
	published.MediaAttachments = post.MediaAttachments
	if _, err := s.pr.Create(ctx, published); err != nil {
		return nil, fmt.Errorf("save published post %s: %w", remoteID, err)
	}
	s.metrics.ObservePost(published.Status)
	s.logger.Info("post published", "user_id", user.ID, "post_id", published.ID, "remote_id", remoteID)

	quota, err := s.quota.TrackCall(ctx, user.ID, CallPost)
	if err != nil {
		s.logger.Error("tracking post failed", "user_id", user.ID, "error", err)
	}

	return &transfer.ComposeResult{
		Post:    published,
		Message: "Post published successfully",
		Quota:   quota,
	}, nil
}

func (s *postService) attachMedia(ctx context.Context, userID int64, post *models.Post, files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return nil
	}
	urls, err := s.media.Upload(ctx, userID, files)
	if err != nil {
		return err
	}
	return post.SetMedia(urls)
}

func (s *postService) ComposeInfo(ctx context.Context, user *models.User) (*transfer.ComposeInfo, error) {
	status, err := s.quota.GetStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	elevated := user.Elevated()
	return &transfer.ComposeInfo{
		Quota:     status,
		Premium:   elevated,
		CharLimit: CharLimit(elevated),
	}, nil
}

// Delete removes the local record. A published post is also deleted at X
// on a best-effort basis and the attempt is tracked as a post call.
func (s *postService) Delete(ctx context.Context, user *models.User, postID int64) (*transfer.DeleteResult, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post %d: %w", postID, err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != user.ID {
		return nil, ErrNotOwner
	}

	result := &transfer.DeleteResult{PostID: postID, Message: "Post deleted successfully"}

	if post.Published() {
		if err := s.deleteRemote(ctx, user, *post.TwitterID); err != nil {
			s.logger.Warn("remote delete failed", "user_id", user.ID, "post_id", postID, "error", err)
			result.Warning = fmt.Sprintf("Post removed locally but could not be deleted on X: %v", err)
		}
		if _, err := s.quota.TrackCall(ctx, user.ID, CallPost); err != nil {
			s.logger.Error("tracking delete failed", "user_id", user.ID, "error", err)
		}
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return nil, fmt.Errorf("remove post %d: %w", postID, err)
	}
	s.logger.Info("post deleted", "user_id", user.ID, "post_id", postID)
	return result, nil
}

func (s *postService) deleteRemote(ctx context.Context, user *models.User, remoteID string) error {
	creds, err := s.cipher.completeCredentials(user)
	if err != nil {
		return err
	}
	if err := s.x.DeletePost(ctx, creds, remoteID); err != nil {
		return &RemoteError{Op: "delete post", Err: err}
	}
	return nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.pr.GetByUserID(ctx, userID)
}

func (s *postService) Scheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.pr.GetScheduled(ctx, userID)
}

func (s *postService) CountByStatus(ctx context.Context, userID int64) (map[string]int, error) {
	return s.pr.CountByStatus(ctx, userID)
}

// IsValidationError reports whether err is a rejected composition.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrContentEmpty) ||
		errors.Is(err, ErrExceedsLimit) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrUnsupportedMedia) ||
		errors.Is(err, ErrInvalidStream) ||
		errors.Is(err, ErrInvalidQuery)
}
