package service

import (
	"context"
	"net/url"

	"github.com/dghubble/oauth1"
	"github.com/dghubble/oauth1/twitter"
	config "github.com/maheshrc27/xpilot/configs"
)

const (
	SimulatedRequestToken  = "simulated_request_token"
	SimulatedRequestSecret = "simulated_request_secret"
	SimulatedVerifier      = "fake_verifier"
)

// XAuthorizer runs the three-legged OAuth 1.0a exchange.
type XAuthorizer interface {
	RequestToken(ctx context.Context) (token, secret string, err error)
	AuthorizationURL(token string) (string, error)
	AccessToken(ctx context.Context, requestToken, requestSecret, verifier string) (token, secret string, err error)
}

func NewXAuthorizer(cfg config.Config) XAuthorizer {
	if cfg.SimulateOAuth {
		return &simulatedAuthorizer{
			callbackURL:  cfg.CallbackURL(),
			accessToken:  cfg.X.AccessToken,
			accessSecret: cfg.X.AccessTokenSecret,
		}
	}
	return &oauth1Authorizer{
		config: &oauth1.Config{
			ConsumerKey:    cfg.X.ConsumerKey,
			ConsumerSecret: cfg.X.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL(),
			Endpoint:       twitter.AuthorizeEndpoint,
		},
	}
}

type oauth1Authorizer struct {
	config *oauth1.Config
}

func (a *oauth1Authorizer) RequestToken(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	return a.config.RequestToken()
}

func (a *oauth1Authorizer) AuthorizationURL(token string) (string, error) {
	u, err := a.config.AuthorizationURL(token)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (a *oauth1Authorizer) AccessToken(ctx context.Context, requestToken, requestSecret, verifier string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	return a.config.AccessToken(requestToken, requestSecret, verifier)
}

type simulatedAuthorizer struct {
	callbackURL  string
	accessToken  string
	accessSecret string
}

func (a *simulatedAuthorizer) RequestToken(ctx context.Context) (string, string, error) {
	return SimulatedRequestToken, SimulatedRequestSecret, nil
}

// AuthorizationURL points straight back at the callback.
func (a *simulatedAuthorizer) AuthorizationURL(token string) (string, error) {
	u, err := url.Parse(a.callbackURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("oauth_token", token)
	q.Set("oauth_verifier", SimulatedVerifier)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *simulatedAuthorizer) AccessToken(ctx context.Context, requestToken, requestSecret, verifier string) (string, string, error) {
	token, secret := a.accessToken, a.accessSecret
	if token == "" {
		token = "simulated_access_token"
	}
	if secret == "" {
		secret = "simulated_access_secret"
	}
	return token, secret, nil
}
