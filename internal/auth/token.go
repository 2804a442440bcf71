package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/constants"
)

// TokenManager supplies bearer tokens to the transport.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is an OAuth2 token pair as issued by the account.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be used. Tokens without an
// expiry are trusted until the server rejects them.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token and is safe for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.Set(nil)
}

// StaticTokenManager serves a fixed long-lived token.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for a long-lived token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken implements TokenManager.
func (m *StaticTokenManager) GetToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return "", ErrNoCredentials
	}

	return m.token, nil
}

// RefreshToken implements TokenManager.
func (m *StaticTokenManager) RefreshToken(context.Context) error {
	return ErrStaticTokenCannotRefresh
}

// SetToken implements TokenManager.
func (m *StaticTokenManager) SetToken(token string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}
