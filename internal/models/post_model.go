package models

import (
	"encoding/json"
	"time"
)

type Post struct {
	ID               int64      `db:"id" json:"id"`
	TwitterID        *string    `db:"twitter_id" json:"twitter_id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	Text             string     `db:"text" json:"text"`
	MediaAttachments *string    `db:"media_attachments" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	ScheduledAt      *time.Time `db:"scheduled_at" json:"scheduled_at"`
	PostedAt         *time.Time `db:"posted_at" json:"posted_at"`
	Status           string     `db:"status" json:"status"` // draft, scheduled, posted, failed
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusDraft     = "draft"
)

// NewScheduledPost keeps scheduled_at set only for scheduled posts.
func NewScheduledPost(userID int64, text string, scheduledAt time.Time) *Post {
	at := scheduledAt.UTC()
	return &Post{
		UserID:      userID,
		Text:        text,
		ScheduledAt: &at,
		Status:      PostStatusScheduled,
	}
}

// NewPublishedPost keeps posted_at set only for posted posts.
func NewPublishedPost(userID int64, text, twitterID string, postedAt time.Time) *Post {
	at := postedAt.UTC()
	return &Post{
		UserID:    userID,
		Text:      text,
		TwitterID: &twitterID,
		PostedAt:  &at,
		Status:    PostStatusPosted,
	}
}

// Media decodes the stored attachment list.
func (p *Post) Media() []string {
	if p.MediaAttachments == nil || *p.MediaAttachments == "" {
		return []string{}
	}
	var media []string
	if err := json.Unmarshal([]byte(*p.MediaAttachments), &media); err != nil {
		return []string{}
	}
	return media
}

// SetMedia stores attachments as JSON, or NULL when there are none.
func (p *Post) SetMedia(media []string) error {
	if len(media) == 0 {
		p.MediaAttachments = nil
		return nil
	}
	b, err := json.Marshal(media)
	if err != nil {
		return err
	}
	s := string(b)
	p.MediaAttachments = &s
	return nil
}

func (p *Post) Published() bool {
	return p.Status == PostStatusPosted && p.TwitterID != nil && *p.TwitterID != ""
}

func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	return json.Marshal(struct {
		alias
		Media []string `json:"media"`
	}{alias: alias(p), Media: p.Media()})
}
