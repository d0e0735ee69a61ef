// Package auth implements bearer token authentication for the HTTP
// surfaces.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerTokenAuth validates requests against a single shared token.
type BearerTokenAuth struct {
	token string
}

// NewBearerTokenAuth creates a bearer token authenticator.
func NewBearerTokenAuth(token string) *BearerTokenAuth {
	return &BearerTokenAuth{token: token}
}

// IsAuthorized validates the Authorization header. Comparison is
// constant-time.
func (b *BearerTokenAuth) IsAuthorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(b.token)) == 1
}

// SetUnauthorizedHeaders sets the WWW-Authenticate challenge header.
func (b *BearerTokenAuth) SetUnauthorizedHeaders(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
}
