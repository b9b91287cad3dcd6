package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// RequestTokenClaims carry the OAuth 1.0a request token between the
// authorize redirect and the callback.
type RequestTokenClaims struct {
	RequestToken  string `json:"rt"`
	RequestSecret string `json:"rs"`
	jwt.RegisteredClaims
}
