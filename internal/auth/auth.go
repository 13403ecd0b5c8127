// Package auth resolves bearer session tokens to user identities.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
)

// Authenticator extracts the caller identity from a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// TokenRegistry maps opaque session tokens to user ids. Tokens are issued
// out-of-band; the chat service only verifies them.
type TokenRegistry struct {
	tokens map[string]string
}

// NewTokenRegistry builds a registry from a token -> user id map.
func NewTokenRegistry(tokens map[string]string) *TokenRegistry {
	copied := make(map[string]string, len(tokens))
	for tok, user := range tokens {
		copied[tok] = user
	}
	return &TokenRegistry{tokens: copied}
}

// Authenticate resolves the request's bearer token to a user id.
func (reg *TokenRegistry) Authenticate(r *http.Request) (string, error) {
	bearer, err := extractBearer(r)
	if err != nil {
		return "", err
	}

	user, ok := reg.tokens[bearer]
	if !ok {
		return "", ErrInvalidToken
	}
	return user, nil
}

func extractBearer(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingBearer
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
