package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Canned identity answered while SIMULATE_OAUTH is on.
const (
	SimulatedTwitterID = "12345678"
	SimulatedUsername  = "test_user"
	SimulatedName      = "Test User"
	SimulatedAvatarURL = "https://abs.twimg.com/sticky/default_profile_images/default_profile_normal.png"
)

const digits = "0123456789"

type simulatedXClient struct {
	logger *slog.Logger
}

// NewSimulatedXClient never touches the network.
func NewSimulatedXClient(logger *slog.Logger) XClient {
	return &simulatedXClient{logger: logger}
}

func (c *simulatedXClient) CreatePost(ctx context.Context, creds models.Credentials, text string) (string, error) {
	id, err := gonanoid.Generate(digits, 19)
	if err != nil {
		return "", err
	}
	c.logger.Info("simulated post created", "remote_id", id)
	return id, nil
}

func (c *simulatedXClient) DeletePost(ctx context.Context, creds models.Credentials, remoteID string) error {
	c.logger.Info("simulated post deleted", "remote_id", remoteID)
	return nil
}

func (c *simulatedXClient) GetProfile(ctx context.Context, creds models.Credentials) (*transfer.XProfile, error) {
	return &transfer.XProfile{
		ID:              SimulatedTwitterID,
		Username:        SimulatedUsername,
		Name:            SimulatedName,
		Description:     "Simulated account",
		ProfileImageURL: SimulatedAvatarURL,
		PublicMetrics: transfer.XPublicMetrics{
			FollowersCount: 42,
			FollowingCount: 7,
			TweetCount:     128,
		},
	}, nil
}

func (c *simulatedXClient) VerifyCredentials(ctx context.Context, creds models.Credentials) (*transfer.XIdentity, error) {
	return &transfer.XIdentity{
		TwitterID:       SimulatedTwitterID,
		Username:        SimulatedUsername,
		Name:            SimulatedName,
		ProfileImageURL: SimulatedAvatarURL,
	}, nil
}

func (c *simulatedXClient) InvalidateToken(ctx context.Context, creds models.Credentials) error {
	return nil
}

func (c *simulatedXClient) LookupUser(ctx context.Context, handle string) (*transfer.XUser, error) {
	id, err := gonanoid.Generate(digits, 10)
	if err != nil {
		return nil, err
	}
	handle = strings.TrimPrefix(handle, "@")
	return &transfer.XUser{
		ID:              id,
		Username:        handle,
		Name:            handle,
		ProfileImageURL: SimulatedAvatarURL,
	}, nil
}

func (c *simulatedXClient) LookupUsers(ctx context.Context, handles []string) ([]*transfer.XUser, error) {
	users := make([]*transfer.XUser, 0, len(handles))
	for _, h := range handles {
		u, err := c.LookupUser(ctx, h)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (c *simulatedXClient) Follow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	return nil
}

func (c *simulatedXClient) Unfollow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	return nil
}
