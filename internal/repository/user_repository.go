package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/xpilot/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	GetByTwitterID(ctx context.Context, twitterID string) (*models.User, bool, error)
	Upsert(ctx context.Context, user *models.User) (int64, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetAccessToken(ctx context.Context, id int64, accessToken, accessTokenSecret string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, twitter_id, username, name, COALESCE(profile_image_url, ''), consumer_key, consumer_secret,
	access_token, access_token_secret, is_verified, verified_type, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.TwitterID, &user.Username, &user.Name, &user.ProfileImageURL,
		&user.ConsumerKey, &user.ConsumerSecret, &user.AccessToken, &user.AccessTokenSecret,
		&user.IsVerified, &user.VerifiedType, &user.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

func (r *userRepository) GetByTwitterID(ctx context.Context, twitterID string) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE twitter_id = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, twitterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

// Upsert creates the user or, when the remote identity is already known,
// refreshes its profile and tokens. Consumer credentials are only written on
// insert. last_login is taken from user.LastLogin either way.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (
			twitter_id,
			username,
			name,
			profile_image_url,
			consumer_key,
			consumer_secret,
			access_token,
			access_token_secret,
			is_verified,
			verified_type,
			last_login
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (twitter_id) DO UPDATE
		SET username = EXCLUDED.username,
			name = EXCLUDED.name,
			profile_image_url = EXCLUDED.profile_image_url,
			access_token = EXCLUDED.access_token,
			access_token_secret = EXCLUDED.access_token_secret,
			is_verified = EXCLUDED.is_verified,
			verified_type = EXCLUDED.verified_type,
			last_login = EXCLUDED.last_login
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.TwitterID,
		user.Username,
		user.Name,
		user.ProfileImageURL,
		user.ConsumerKey,
		user.ConsumerSecret,
		user.AccessToken,
		user.AccessTokenSecret,
		user.IsVerified,
		user.VerifiedType,
		user.LastLogin,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1,
			name = $2,
			profile_image_url = $3,
			is_verified = $4,
			verified_type = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, user.Username, user.Name, user.ProfileImageURL, user.IsVerified, user.VerifiedType, user.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *userRepository) SetAccessToken(ctx context.Context, id int64, accessToken, accessTokenSecret string) error {
	query := `
		UPDATE users
		SET access_token = $1,
			access_token_secret = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, accessToken, accessTokenSecret, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; user_id may not exist")
		return errors.New("no rows affected; user_id may not exist")
	}
	return nil
}
