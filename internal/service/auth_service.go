package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/transfer"
	"github.com/maheshrc27/xpilot/pkg/utils"
)

type AuthService interface {
	BeginLogin(ctx context.Context) (*transfer.LoginRedirect, error)
	CompleteLogin(ctx context.Context, requestToken, requestSecret, verifier string) (*models.User, error)
	RefreshCredentials(ctx context.Context, userID int64) (*models.User, error)
	RevokeCredentials(ctx context.Context, userID int64) error
	TokenStatus(ctx context.Context, userID int64) (*transfer.TokenStatus, error)
}

type authService struct {
	ur             repository.UserRepository
	authorizer     XAuthorizer
	x              XClient
	quota          QuotaService
	cipher         credentialCipher
	consumerKey    string
	consumerSecret string
	logger         *slog.Logger
	now            func() time.Time
}

func NewAuthService(cfg config.Config, ur repository.UserRepository, authorizer XAuthorizer, x XClient, quota QuotaService, logger *slog.Logger, now func() time.Time) AuthService {
	if now == nil {
		now = time.Now
	}
	consumerKey, consumerSecret := cfg.X.ConsumerKey, cfg.X.ConsumerSecret
	if cfg.SimulateOAuth {
		if consumerKey == "" {
			consumerKey = "simulated_consumer_key"
		}
		if consumerSecret == "" {
			consumerSecret = "simulated_consumer_secret"
		}
	}
	return &authService{
		ur:             ur,
		authorizer:     authorizer,
		x:              x,
		quota:          quota,
		cipher:         newCredentialCipher(cfg.SecretKey),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		logger:         logger,
		now:            now,
	}
}

func (s *authService) BeginLogin(ctx context.Context) (*transfer.LoginRedirect, error) {
	token, secret, err := s.authorizer.RequestToken(ctx)
	if err != nil {
		return nil, &RemoteError{Op: "request token", Err: err}
	}

	authURL, err := s.authorizer.AuthorizationURL(token)
	if err != nil {
		return nil, fmt.Errorf("build authorization url: %w", err)
	}

	return &transfer.LoginRedirect{URL: authURL, RequestToken: token, RequestSecret: secret}, nil
}

// CompleteLogin exchanges the verifier, resolves the remote identity and
// creates or refreshes the matching local user.
func (s *authService) CompleteLogin(ctx context.Context, requestToken, requestSecret, verifier string) (*models.User, error) {
	if requestToken == "" || verifier == "" {
		return nil, fmt.Errorf("%w: missing request token or verifier", ErrMissingCredentials)
	}

	accessToken, accessSecret, err := s.authorizer.AccessToken(ctx, requestToken, requestSecret, verifier)
	if err != nil {
		return nil, &RemoteError{Op: "access token", Err: err}
	}

	creds := models.Credentials{
		ConsumerKey:       s.consumerKey,
		ConsumerSecret:    s.consumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessSecret,
	}

	identity, err := s.x.VerifyCredentials(ctx, creds)
	if err != nil {
		return nil, &RemoteError{Op: "verify credentials", Err: err}
	}

	existing, found, err := s.ur.GetByTwitterID(ctx, identity.TwitterID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		TwitterID:       identity.TwitterID,
		Username:        identity.Username,
		Name:            identity.Name,
		ProfileImageURL: identity.ProfileImageURL,
		IsVerified:      identity.Verified,
		VerifiedType:    identity.VerifiedType,
		CreatedAt:       now,
		LastLogin:       &now,
	}
	if found {
		user.CreatedAt = existing.CreatedAt
	}
	if err := s.cipher.seal(user, creds); err != nil {
		return nil, err
	}

	id, err := s.ur.Upsert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	user.ID = id

	s.track(ctx, id, CallVerify)
	if found {
		s.logger.Info("user logged in", "user_id", id, "username", user.Username)
	} else {
		s.logger.Info("user registered", "user_id", id, "username", user.Username)
	}
	return user, nil
}

func (s *authService) RefreshCredentials(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	creds, err := s.cipher.completeCredentials(user)
	if err != nil {
		return nil, err
	}

	identity, err := s.x.VerifyCredentials(ctx, creds)
	if err != nil {
		return nil, &RemoteError{Op: "verify credentials", Err: err}
	}

	user.Username = identity.Username
	user.Name = identity.Name
	user.ProfileImageURL = identity.ProfileImageURL
	user.IsVerified = identity.Verified
	user.VerifiedType = identity.VerifiedType
	if err := s.ur.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.track(ctx, userID, CallVerify)
	return user, nil
}

// RevokeCredentials clears the stored access token. Invalidation at X is
// best effort.
func (s *authService) RevokeCredentials(ctx context.Context, userID int64) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	creds, err := s.cipher.open(user)
	if err != nil {
		return err
	}
	if creds.Complete() {
		if err := s.x.InvalidateToken(ctx, creds); err != nil {
			s.logger.Warn("token invalidation failed", "user_id", userID, "error", err)
		}
	}

	if err := s.ur.SetAccessToken(ctx, userID, "", ""); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	s.logger.Info("access token revoked", "user_id", userID)
	return nil
}

func (s *authService) TokenStatus(ctx context.Context, userID int64) (*transfer.TokenStatus, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	creds, err := s.cipher.open(user)
	if err != nil {
		return nil, err
	}

	status := &transfer.TokenStatus{
		ConsumerKey:       utils.Mask(creds.ConsumerKey),
		ConsumerSecret:    utils.Mask(creds.ConsumerSecret),
		AccessToken:       utils.Mask(creds.AccessToken),
		AccessTokenSecret: utils.Mask(creds.AccessTokenSecret),
		Complete:          creds.Complete(),
	}
	if user.LastLogin != nil {
		status.LastLogin = user.LastLogin.UTC().Format(time.RFC3339)
	}
	return status, nil
}

func (s *authService) getUser(ctx context.Context, userID int64) (*models.User, error) {
	user, exists, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) track(ctx context.Context, userID int64, callType string) {
	if _, err := s.quota.TrackCall(ctx, userID, callType); err != nil {
		s.logger.Error("tracking api call failed", "user_id", userID, "call_type", callType, "error", err)
	}
}
