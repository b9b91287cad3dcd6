package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                  BIGSERIAL PRIMARY KEY,
	twitter_id          VARCHAR(64)  NOT NULL UNIQUE,
	username            VARCHAR(64)  NOT NULL,
	name                VARCHAR(128) NOT NULL,
	profile_image_url   VARCHAR(256),
	consumer_key        TEXT NOT NULL,
	consumer_secret     TEXT NOT NULL,
	access_token        TEXT NOT NULL,
	access_token_secret TEXT NOT NULL,
	is_verified         BOOLEAN NOT NULL DEFAULT FALSE,
	verified_type       VARCHAR(64) NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login          TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS posts (
	id                BIGSERIAL PRIMARY KEY,
	twitter_id        VARCHAR(64) UNIQUE,
	user_id           BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	text              TEXT NOT NULL,
	media_attachments TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	scheduled_at      TIMESTAMPTZ,
	posted_at         TIMESTAMPTZ,
	status            VARCHAR(16) NOT NULL DEFAULT 'draft',
	CONSTRAINT posts_status_check CHECK (status IN ('draft', 'scheduled', 'posted', 'failed')),
	CONSTRAINT posts_posted_at_check CHECK ((status = 'posted') = (posted_at IS NOT NULL)),
	CONSTRAINT posts_scheduled_at_check CHECK ((status = 'scheduled') = (scheduled_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS posts_user_status_idx ON posts (user_id, status);

CREATE TABLE IF NOT EXISTS streams (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	name       VARCHAR(128) NOT NULL,
	rules      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_run   TIMESTAMPTZ,
	active     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS stream_results (
	id         BIGSERIAL PRIMARY KEY,
	stream_id  BIGINT NOT NULL REFERENCES streams (id) ON DELETE CASCADE,
	tweet_id   VARCHAR(64) NOT NULL,
	tweet_text TEXT NOT NULL,
	author_id  VARCHAR(64) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	data       TEXT
);

CREATE TABLE IF NOT EXISTS quota_usage (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	month      INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year       INTEGER NOT NULL,
	posts_used INTEGER NOT NULL DEFAULT 0,
	reset_date VARCHAR(10) NOT NULL,
	CONSTRAINT _user_month_year_uc UNIQUE (user_id, month, year)
);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
