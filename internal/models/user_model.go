package models

import "time"

type User struct {
	ID                int64      `db:"id" json:"id"`
	TwitterID         string     `db:"twitter_id" json:"twitter_id"`
	Username          string     `db:"username" json:"username"`
	Name              string     `db:"name" json:"name"`
	ProfileImageURL   string     `db:"profile_image_url" json:"profile_image_url"`
	ConsumerKey       string     `db:"consumer_key" json:"-"`
	ConsumerSecret    string     `db:"consumer_secret" json:"-"`
	AccessToken       string     `db:"access_token" json:"-"`
	AccessTokenSecret string     `db:"access_token_secret" json:"-"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	VerifiedType      string     `db:"verified_type" json:"verified_type"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	LastLogin         *time.Time `db:"last_login" json:"last_login"`
}

// Credentials are the four OAuth 1.0a strings that sign user-context calls.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// Elevated reports whether the account gets the expanded post length.
func (u *User) Elevated() bool {
	if u.IsVerified {
		return true
	}
	switch u.VerifiedType {
	case "Business", "Government", "Blue", "business", "government", "blue":
		return true
	}
	return false
}
