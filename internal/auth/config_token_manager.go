package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves refreshed tokens.
type ConfigPersister interface {
	UpdateToken(accessToken string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps OAuth2TokenManager and persists every refreshed
// token, since the account invalidates the previous refresh token on use.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
}

// NewConfigTokenManager creates a config-persisting token manager.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister, initialExpiry time.Time) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)

	if config.AccessToken != "" {
		oauth2Manager.SetToken(config.AccessToken, initialExpiry)
	}

	manager := &ConfigTokenManager{
		oauth2Manager:   oauth2Manager,
		configPersister: configPersister,
	}

	oauth2Manager.OnRefresh(func(token *Token) {
		if err := manager.persistToken(token); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
		}
	})

	return manager
}

// GetToken returns a valid access token, refreshing if necessary.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.oauth2Manager.GetToken(ctx)
}

// RefreshToken forces a token refresh.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	return m.oauth2Manager.RefreshToken(ctx)
}

// SetToken manually sets the access token.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.oauth2Manager.SetToken(token, expiresAt)
}

// Exchange trades an authorization code for tokens and persists them.
func (m *ConfigTokenManager) Exchange(ctx context.Context, code string) (*Token, error) {
	return m.oauth2Manager.Exchange(ctx, code)
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.oauth2Manager.Token()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateToken(token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}
