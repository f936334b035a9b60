// Package auth verifies caller identity. Requests carry a signed identity
// token; verification yields the caller's email, which scopes every read and
// write in the service.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when a token is missing, malformed, expired, or
// fails signature verification.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier validates an identity token and returns the caller's email.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// ExtractBearerToken extracts the token from an Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <token>'")
	}
	return parts[1], nil
}
