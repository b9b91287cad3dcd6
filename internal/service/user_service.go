package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	Profile(ctx context.Context, user *models.User) (*transfer.XProfile, error)
	Search(ctx context.Context, user *models.User, query string) ([]*transfer.XUser, error)
	View(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error)
	Follow(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error)
	Unfollow(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error)
}

type userService struct {
	u      repository.UserRepository
	x      XClient
	quota  QuotaService
	cipher credentialCipher
	logger *slog.Logger
}

func NewUserService(cfg config.Config, u repository.UserRepository, x XClient, quota QuotaService, logger *slog.Logger) UserService {
	return &userService{
		u:      u,
		x:      x,
		quota:  quota,
		cipher: newCredentialCipher(cfg.SecretKey),
		logger: logger,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}

	if !isExist {
		s.logger.Info("user not found", "user_id", id)
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *userService) Profile(ctx context.Context, user *models.User) (*transfer.XProfile, error) {
	creds, err := s.cipher.completeCredentials(user)
	if err != nil {
		return nil, err
	}

	profile, err := s.x.GetProfile(ctx, creds)
	if err != nil {
		return nil, &RemoteError{Op: "get profile", Err: err}
	}
	s.track(ctx, user.ID, CallProfileView)
	return profile, nil
}

func (s *userService) Search(ctx context.Context, user *models.User, query string) ([]*transfer.XUser, error) {
	handles := ParseHandles(query)
	if len(handles) == 0 {
		return nil, fmt.Errorf("%w: enter at least one username", ErrInvalidQuery)
	}
	if _, err := s.cipher.completeCredentials(user); err != nil {
		return nil, err
	}

	users, err := s.x.LookupUsers(ctx, handles)
	if err != nil {
		return nil, &RemoteError{Op: "search users", Err: err}
	}
	s.track(ctx, user.ID, CallSearch)
	return users, nil
}

func (s *userService) View(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error) {
	target, err := s.lookup(ctx, user, handle)
	if err != nil {
		return nil, err
	}
	s.track(ctx, user.ID, CallUserView)
	return target, nil
}

func (s *userService) Follow(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error) {
	return s.changeFollow(ctx, user, handle, CallFollow)
}

func (s *userService) Unfollow(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error) {
	return s.changeFollow(ctx, user, handle, CallUnfollow)
}

func (s *userService) changeFollow(ctx context.Context, user *models.User, handle, callType string) (*transfer.XUser, error) {
	creds, err := s.cipher.completeCredentials(user)
	if err != nil {
		return nil, err
	}
	target, err := s.lookup(ctx, user, handle)
	if err != nil {
		return nil, err
	}

	if callType == CallFollow {
		err = s.x.Follow(ctx, creds, user.TwitterID, target.ID)
	} else {
		err = s.x.Unfollow(ctx, creds, user.TwitterID, target.ID)
	}
	if err != nil {
		return nil, &RemoteError{Op: callType, Err: err}
	}

	s.track(ctx, user.ID, callType)
	s.logger.Info("follow state changed", "user_id", user.ID, "target", target.Username, "call_type", callType)
	return target, nil
}

func (s *userService) lookup(ctx context.Context, user *models.User, handle string) (*transfer.XUser, error) {
	handles := ParseHandles(handle)
	if len(handles) != 1 {
		return nil, fmt.Errorf("%w: %q is not a username", ErrInvalidQuery, handle)
	}
	if _, err := s.cipher.completeCredentials(user); err != nil {
		return nil, err
	}

	target, err := s.x.LookupUser(ctx, handles[0])
	if err != nil {
		return nil, &RemoteError{Op: "lookup user", Err: err}
	}
	return target, nil
}

func (s *userService) track(ctx context.Context, userID int64, callType string) {
	if _, err := s.quota.TrackCall(ctx, userID, callType); err != nil {
		s.logger.Error("tracking api call failed", "user_id", userID, "call_type", callType, "error", err)
	}
}

// ParseHandles splits a comma or space separated list of usernames, drops
// leading @ signs and duplicates, and keeps the first occurrence order.
func ParseHandles(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	seen := make(map[string]struct{}, len(fields))
	handles := make([]string, 0, len(fields))
	for _, f := range fields {
		h := strings.TrimLeft(f, "@")
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, h)
	}
	return handles
}
