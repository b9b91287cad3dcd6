package config

import (
	"errors"
	"os"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Configured reports whether uploads can be attempted.
func (r R2) Configured() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type X struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	APIBaseURL        string
}

type Config struct {
	X             X
	PostgresURI   string
	SiteURL       string
	SimulateOAuth bool
	R2            R2
	SecretKey     string
	CookieName    string
	Port          string
	LogLevel      string
	LogFile       string
}

func LoadConfig() *Config {
	return &Config{
		X: X{
			ConsumerKey:       getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret:    getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:       getEnv("ACCESS_TOKEN", ""),
			AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
			APIBaseURL:        getEnv("X_API_BASE_URL", "https://api.twitter.com"),
		},
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		SiteURL:       strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		SimulateOAuth: getEnvBool("SIMULATE_OAUTH", false),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "xpilot_session"),
		Port:       getEnv("PORT", "3000"),
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogFile:    getEnv("LOG_FILE", "logs/xpilot.log"),
	}
}

// CallbackURL is the OAuth callback registered with X.
func (c *Config) CallbackURL() string {
	return c.SiteURL + "/auth/x_callback"
}

func (c *Config) Validate() error {
	var errs []error
	if c.PostgresURI == "" {
		errs = append(errs, errors.New("POSTGRES_URI is not set"))
	}
	switch len(c.SecretKey) {
	case 0:
		errs = append(errs, errors.New("SECRET_KEY is not set"))
	case 16, 24, 32:
	default:
		errs = append(errs, errors.New("SECRET_KEY must be 16, 24 or 32 bytes"))
	}
	if !c.SimulateOAuth && (c.X.ConsumerKey == "" || c.X.ConsumerSecret == "") {
		errs = append(errs, errors.New("TWITTER_CONSUMER_KEY and TWITTER_CONSUMER_SECRET are required outside simulation mode"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
