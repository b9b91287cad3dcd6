package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

type StreamService interface {
	Create(ctx context.Context, userID int64, in *transfer.StreamCreation) (*models.Stream, error)
	List(ctx context.Context, userID int64) ([]*models.Stream, error)
	Results(ctx context.Context, userID, streamID int64) ([]*models.StreamResult, error)
	SaveResult(ctx context.Context, userID, streamID int64, in *transfer.StreamResultCreation) (*models.StreamResult, error)
	Toggle(ctx context.Context, userID, streamID int64) (*models.Stream, error)
	Delete(ctx context.Context, userID, streamID int64) error
}

type streamService struct {
	sr     repository.StreamRepository
	logger *slog.Logger
}

func NewStreamService(sr repository.StreamRepository, logger *slog.Logger) StreamService {
	return &streamService{sr: sr, logger: logger}
}

func (s *streamService) Create(ctx context.Context, userID int64, in *transfer.StreamCreation) (*models.Stream, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidStream)
	}

	rules, err := ParseRules(in.Rules)
	if err != nil {
		return nil, err
	}

	stream := &models.Stream{UserID: userID, Name: name}
	if err := stream.SetRules(rules); err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	if _, err := s.sr.Create(ctx, stream); err != nil {
		return nil, fmt.Errorf("save stream: %w", err)
	}
	s.logger.Info("stream created", "user_id", userID, "stream_id", stream.ID, "rules", len(rules))
	return stream, nil
}

func (s *streamService) List(ctx context.Context, userID int64) ([]*models.Stream, error) {
	return s.sr.ListByUserID(ctx, userID)
}

func (s *streamService) Results(ctx context.Context, userID, streamID int64) ([]*models.StreamResult, error) {
	if _, err := s.owned(ctx, userID, streamID); err != nil {
		return nil, err
	}
	return s.sr.ListResults(ctx, streamID)
}

func (s *streamService) SaveResult(ctx context.Context, userID, streamID int64, in *transfer.StreamResultCreation) (*models.StreamResult, error) {
	if _, err := s.owned(ctx, userID, streamID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.TweetID) == "" || strings.TrimSpace(in.AuthorID) == "" {
		return nil, fmt.Errorf("%w: tweet_id and author_id are required", ErrInvalidStream)
	}

	res := &models.StreamResult{
		StreamID:  streamID,
		TweetID:   strings.TrimSpace(in.TweetID),
		TweetText: in.TweetText,
		AuthorID:  strings.TrimSpace(in.AuthorID),
	}
	if len(in.Data) > 0 {
		b, err := json.Marshal(in.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStream, err)
		}
		data := string(b)
		res.Data = &data
	}

	if _, err := s.sr.AddResult(ctx, res); err != nil {
		return nil, fmt.Errorf("save stream result: %w", err)
	}
	return res, nil
}

func (s *streamService) Toggle(ctx context.Context, userID, streamID int64) (*models.Stream, error) {
	stream, err := s.owned(ctx, userID, streamID)
	if err != nil {
		return nil, err
	}

	stream.Active = !stream.Active
	if err := s.sr.SetActive(ctx, streamID, stream.Active); err != nil {
		return nil, fmt.Errorf("toggle stream %d: %w", streamID, err)
	}
	return stream, nil
}

func (s *streamService) Delete(ctx context.Context, userID, streamID int64) error {
	if _, err := s.owned(ctx, userID, streamID); err != nil {
		return err
	}
	if err := s.sr.Remove(ctx, streamID); err != nil {
		return fmt.Errorf("remove stream %d: %w", streamID, err)
	}
	s.logger.Info("stream deleted", "user_id", userID, "stream_id", streamID)
	return nil
}

func (s *streamService) owned(ctx context.Context, userID, streamID int64) (*models.Stream, error) {
	stream, err := s.sr.GetByID(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("load stream %d: %w", streamID, err)
	}
	if stream == nil {
		return nil, ErrStreamNotFound
	}
	if stream.UserID != userID {
		return nil, ErrNotOwner
	}
	return stream, nil
}

// ParseRules accepts a JSON array of rules or one rule value per line.
func ParseRules(raw string) ([]models.StreamRule, error) {
	raw = strings.TrimSpace(raw)
	var parsed []models.StreamRule

	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("%w: rules are not valid JSON", ErrInvalidStream)
		}
	} else {
		for _, line := range strings.Split(raw, "\n") {
			parsed = append(parsed, models.StreamRule{Value: line})
		}
	}

	rules := make([]models.StreamRule, 0, len(parsed))
	for _, r := range parsed {
		r.Value = strings.TrimSpace(r.Value)
		r.Tag = strings.TrimSpace(r.Tag)
		if r.Value != "" {
			rules = append(rules, r)
		}
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: at least one rule is required", ErrInvalidStream)
	}
	return rules, nil
}
