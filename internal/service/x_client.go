package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/metrics"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	requestTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
	userFields       = "description,profile_image_url,public_metrics,verified,verified_type"
	maxLookupHandles = 100
)

// XClient is the remote boundary. User-context calls are signed with the
// caller's OAuth 1.0a credentials. Lookups use an app-only bearer token.
type XClient interface {
	CreatePost(ctx context.Context, creds models.Credentials, text string) (string, error)
	DeletePost(ctx context.Context, creds models.Credentials, remoteID string) error
	GetProfile(ctx context.Context, creds models.Credentials) (*transfer.XProfile, error)
	VerifyCredentials(ctx context.Context, creds models.Credentials) (*transfer.XIdentity, error)
	InvalidateToken(ctx context.Context, creds models.Credentials) error
	LookupUser(ctx context.Context, handle string) (*transfer.XUser, error)
	LookupUsers(ctx context.Context, handles []string) ([]*transfer.XUser, error)
	Follow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error
	Unfollow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error
}

// NewXClient returns the simulated client when cfg.SimulateOAuth is set.
func NewXClient(cfg config.Config, m *metrics.Metrics, logger *slog.Logger) XClient {
	if cfg.SimulateOAuth {
		return NewSimulatedXClient(logger)
	}
	return NewLiveXClient(cfg.X, &http.Client{Timeout: requestTimeout}, m, logger)
}

type xClient struct {
	baseURL    string
	httpClient *http.Client
	appTokens  oauth2.TokenSource
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewLiveXClient(cfg config.X, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) XClient {
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	c := &xClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    m,
		logger:     logger,
	}

	if cfg.ConsumerKey != "" && cfg.ConsumerSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ConsumerKey,
			ClientSecret: cfg.ConsumerSecret,
			TokenURL:     baseURL + "/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		c.appTokens = oauth2.ReuseTokenSource(nil, cc.TokenSource(tokenCtx))
	}
	return c
}

func (c *xClient) userClient(ctx context.Context, creds models.Credentials) *http.Client {
	cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	ctx = context.WithValue(ctx, oauth1.HTTPClient, c.httpClient)
	return cfg.Client(ctx, token)
}

func (c *xClient) appClient() (*http.Client, error) {
	if c.appTokens == nil {
		return nil, ErrMissingCredentials
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: c.appTokens, Base: c.httpClient.Transport},
		Timeout:   requestTimeout,
	}, nil
}

func (c *xClient) CreatePost(ctx context.Context, creds models.Credentials, text string) (string, error) {
	var resp transfer.XCreatePostResponse
	err := c.do(ctx, "create_post", c.userClient(ctx, creds), http.MethodPost, "/2/tweets", transfer.XCreatePostRequest{Text: text}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("create post: response carried no id")
	}
	return resp.Data.ID, nil
}

func (c *xClient) DeletePost(ctx context.Context, creds models.Credentials, remoteID string) error {
	var resp transfer.XDeletePostResponse
	path := "/2/tweets/" + url.PathEscape(remoteID)
	if err := c.do(ctx, "delete_post", c.userClient(ctx, creds), http.MethodDelete, path, nil, &resp); err != nil {
		return err
	}
	if !resp.Data.Deleted {
		return fmt.Errorf("delete post %s: not deleted", remoteID)
	}
	return nil
}

func (c *xClient) GetProfile(ctx context.Context, creds models.Credentials) (*transfer.XProfile, error) {
	var resp transfer.XUserResponse
	path := "/2/users/me?user.fields=" + userFields
	if err := c.do(ctx, "get_profile", c.userClient(ctx, creds), http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &transfer.XAPIError{StatusCode: http.StatusNotFound, Errors: resp.Errors}
	}
	return resp.Data, nil
}

func (c *xClient) VerifyCredentials(ctx context.Context, creds models.Credentials) (*transfer.XIdentity, error) {
	var identity transfer.XIdentity
	path := "/1.1/account/verify_credentials.json?skip_status=true&include_entities=false"
	if err := c.do(ctx, "verify_credentials", c.userClient(ctx, creds), http.MethodGet, path, nil, &identity); err != nil {
		return nil, err
	}
	if identity.TwitterID == "" {
		return nil, fmt.Errorf("verify credentials: response carried no id")
	}
	return &identity, nil
}

func (c *xClient) InvalidateToken(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, "invalidate_token", c.userClient(ctx, creds), http.MethodPost, "/1.1/oauth/invalidate_token", nil, nil)
}

func (c *xClient) LookupUser(ctx context.Context, handle string) (*transfer.XUser, error) {
	client, err := c.appClient()
	if err != nil {
		return nil, err
	}

	var resp transfer.XUserResponse
	path := "/2/users/by/username/" + url.PathEscape(handle) + "?user.fields=" + userFields
	if err := c.do(ctx, "lookup_user", client, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &transfer.XAPIError{StatusCode: http.StatusNotFound, Title: "Not Found", Errors: resp.Errors}
	}
	return resp.Data, nil
}

func (c *xClient) LookupUsers(ctx context.Context, handles []string) ([]*transfer.XUser, error) {
	if len(handles) == 0 {
		return []*transfer.XUser{}, nil
	}
	if len(handles) > maxLookupHandles {
		handles = handles[:maxLookupHandles]
	}
	client, err := c.appClient()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("usernames", strings.Join(handles, ","))
	q.Set("user.fields", userFields)

	var resp transfer.XUsersResponse
	if err := c.do(ctx, "lookup_users", client, http.MethodGet, "/2/users/by?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []*transfer.XUser{}, nil
	}
	return resp.Data, nil
}

func (c *xClient) Follow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	var resp transfer.XFollowResponse
	path := "/2/users/" + url.PathEscape(sourceID) + "/following"
	return c.do(ctx, "follow", c.userClient(ctx, creds), http.MethodPost, path, transfer.XFollowRequest{TargetUserID: targetID}, &resp)
}

func (c *xClient) Unfollow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	var resp transfer.XFollowResponse
	path := "/2/users/" + url.PathEscape(sourceID) + "/following/" + url.PathEscape(targetID)
	return c.do(ctx, "unfollow", c.userClient(ctx, creds), http.MethodDelete, path, nil, &resp)
}

// do sends one request and decodes a 2xx body into out. Anything else comes
// back as *transfer.XAPIError.
func (c *xClient) do(ctx context.Context, op string, client *http.Client, method, path string, body, out any) (err error) {
	defer func() {
		c.metrics.ObserveRemote(op, err)
		if err != nil {
			c.logger.Warn("x api call failed", "op", op, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &transfer.XAPIError{}
		_ = json.Unmarshal(data, apiErr)
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return nil
}
