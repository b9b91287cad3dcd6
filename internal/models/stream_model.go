package models

import (
	"encoding/json"
	"time"
)

type StreamRule struct {
	Value string `json:"value"`
	Tag   string `json:"tag,omitempty"`
}

type Stream struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	Rules     string     `db:"rules" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	LastRun   *time.Time `db:"last_run" json:"last_run"`
	Active    bool       `db:"active" json:"active"`
}

func (s *Stream) RulesList() []StreamRule {
	rules := []StreamRule{}
	if s.Rules == "" {
		return rules
	}
	if err := json.Unmarshal([]byte(s.Rules), &rules); err != nil {
		return []StreamRule{}
	}
	return rules
}

func (s *Stream) SetRules(rules []StreamRule) error {
	if rules == nil {
		rules = []StreamRule{}
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	s.Rules = string(b)
	return nil
}

func (s Stream) MarshalJSON() ([]byte, error) {
	type alias Stream
	return json.Marshal(struct {
		alias
		Rules []StreamRule `json:"rules"`
	}{alias: alias(s), Rules: s.RulesList()})
}

type StreamResult struct {
	ID        int64     `db:"id" json:"id"`
	StreamID  int64     `db:"stream_id" json:"stream_id"`
	TweetID   string    `db:"tweet_id" json:"tweet_id"`
	TweetText string    `db:"tweet_text" json:"tweet_text"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Data      *string   `db:"data" json:"-"`
}

func (r *StreamResult) ExtraData() map[string]any {
	extra := map[string]any{}
	if r.Data == nil || *r.Data == "" {
		return extra
	}
	if err := json.Unmarshal([]byte(*r.Data), &extra); err != nil {
		return map[string]any{}
	}
	return extra
}

func (r StreamResult) MarshalJSON() ([]byte, error) {
	type alias StreamResult
	return json.Marshal(struct {
		alias
		Data map[string]any `json:"data"`
	}{alias: alias(r), Data: r.ExtraData()})
}
