package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/hashicorp/go-cleanhttp"
)

// Static errors for err113 compliance.
var (
	ErrNoCredentials            = errors.New("no valid credentials available")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNoRefreshToken           = errors.New("no refresh token available")
	ErrEmptyAccessToken         = errors.New("token response has no access token")
)

// Grant types accepted by the account token endpoint.
const (
	GrantRefreshToken      = "refresh_token"
	GrantAuthorizationCode = "authorization_code"
)

// OAuth2Config configures the account OAuth2 integration.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AccessToken  string
	RefreshToken string
	HTTPClient   *http.Client
}

// TokenURLFor returns the token endpoint of an account.
func TokenURLFor(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + constants.OAuthTokenPath
}

// OAuth2TokenManager refreshes access tokens with the integration's
// refresh token.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	mu         sync.Mutex
	onRefresh  func(*Token)
}

// NewOAuth2TokenManager creates a manager. An initial access token from the
// config is used until the server rejects it.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
		httpClient.Timeout = constants.ShortHTTPTimeout
	}

	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: httpClient,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// OnRefresh registers a callback invoked with every newly issued token.
func (m *OAuth2TokenManager) OnRefresh(callback func(*Token)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onRefresh = callback
}

// Token returns the current token, if any.
func (m *OAuth2TokenManager) Token() *Token {
	return m.store.Get()
}

// GetToken implements TokenManager.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	if err := m.RefreshToken(ctx); err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken implements TokenManager.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	if refreshToken == "" || m.config.ClientID == "" {
		return ErrNoCredentials
	}

	_, err := m.exchange(ctx, map[string]string{
		"grant_type":    GrantRefreshToken,
		"refresh_token": refreshToken,
	})

	return err
}

// Exchange trades an authorization code for a token pair.
func (m *OAuth2TokenManager) Exchange(ctx context.Context, code string) (*Token, error) {
	return m.exchange(ctx, map[string]string{
		"grant_type": GrantAuthorizationCode,
		"code":       code,
	})
}

// SetToken implements TokenManager.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

func (m *OAuth2TokenManager) exchange(ctx context.Context, grant map[string]string) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload := map[string]string{
		"client_id":     m.config.ClientID,
		"client_secret": m.config.ClientSecret,
	}

	if m.config.RedirectURI != "" {
		payload["redirect_uri"] = m.config.RedirectURI
	}

	for key, value := range grant {
		payload[key] = value
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("token request failed: %w", amocrm.ParseTransportError(resp.StatusCode, respBody))
	}

	var token Token
	if err := json.Unmarshal(respBody, &token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	m.store.Set(&token)

	if m.onRefresh != nil {
		m.onRefresh(&token)
	}

	return &token, nil
}
