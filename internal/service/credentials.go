package service

import (
	"fmt"

	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/pkg/utils"
)

// credentialCipher seals the OAuth strings stored on a user row.
type credentialCipher struct {
	key []byte
}

func newCredentialCipher(secretKey string) credentialCipher {
	return credentialCipher{key: []byte(secretKey)}
}

func (c credentialCipher) open(user *models.User) (models.Credentials, error) {
	var creds models.Credentials
	fields := []struct {
		dst *string
		src string
	}{
		{&creds.ConsumerKey, user.ConsumerKey},
		{&creds.ConsumerSecret, user.ConsumerSecret},
		{&creds.AccessToken, user.AccessToken},
		{&creds.AccessTokenSecret, user.AccessTokenSecret},
	}
	for _, f := range fields {
		plain, err := utils.Decrypt(f.src, c.key)
		if err != nil {
			return models.Credentials{}, fmt.Errorf("decrypt credentials: %w", err)
		}
		*f.dst = plain
	}
	return creds, nil
}

// seal writes the encrypted credentials onto user.
func (c credentialCipher) seal(user *models.User, creds models.Credentials) error {
	fields := []struct {
		dst *string
		src string
	}{
		{&user.ConsumerKey, creds.ConsumerKey},
		{&user.ConsumerSecret, creds.ConsumerSecret},
		{&user.AccessToken, creds.AccessToken},
		{&user.AccessTokenSecret, creds.AccessTokenSecret},
	}
	for _, f := range fields {
		sealed, err := utils.Encrypt([]byte(f.src), c.key)
		if err != nil {
			return fmt.Errorf("encrypt credentials: %w", err)
		}
		*f.dst = sealed
	}
	return nil
}

// completeCredentials opens the user's credentials and requires all four.
func (c credentialCipher) completeCredentials(user *models.User) (models.Credentials, error) {
	creds, err := c.open(user)
	if err != nil {
		return models.Credentials{}, err
	}
	if !creds.Complete() {
		return models.Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}
