package auth

import (
	"context"
	"fmt"
)

// MockVerifier accepts any non-empty token and resolves it to a fixed email.
// Local development only.
type MockVerifier struct {
	Email string
}

// NewMockVerifier creates a verifier for local development.
func NewMockVerifier(email string) *MockVerifier {
	if email == "" {
		email = "dev@lucidia.local"
	}
	return &MockVerifier{Email: email}
}

func (m *MockVerifier) Verify(_ context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrUnauthorized)
	}
	return m.Email, nil
}
