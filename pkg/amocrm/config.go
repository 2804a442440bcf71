package amocrm

import (
	"fmt"
	"time"
)

// DefaultRateLimit is the documented per-account request rate.
const DefaultRateLimit = 7

// Config holds client construction settings.
type Config struct {
	// BaseURL is the account address, e.g. https://example.amocrm.ru.
	// A bare subdomain is accepted.
	BaseURL string `validate:"required"`

	AccessToken  string
	RefreshToken string
	ClientID     string `validate:"required_with=ClientSecret RefreshToken"`
	ClientSecret string `validate:"required_with=ClientID"`
	RedirectURI  string `validate:"omitempty,url"`
	// TokenURL overrides the OAuth2 endpoint derived from BaseURL.
	TokenURL string `validate:"omitempty,url"`
	// TokenExpiresAt is the expiry of AccessToken, if known.
	TokenExpiresAt time.Time
	// TokenPersister receives every token pair issued by a refresh.
	TokenPersister TokenPersister `validate:"-"`

	HTTPTimeout  time.Duration `validate:"gte=0"`
	RetryMax     int           `validate:"gte=0,lte=10"`
	RetryWaitMin time.Duration `validate:"gte=0"`
	RetryWaitMax time.Duration `validate:"gte=0"`
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64 `validate:"gte=0"`

	Debug     bool
	UserAgent string
	Logger    Logger            `validate:"-"`
	Chain     *InterceptorChain `validate:"-"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if c.BaseURL == "" {
		return ErrBaseURLRequired
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// TokenPersister stores refreshed OAuth2 tokens. The account invalidates a
// refresh token once it has been used, so the new pair must be kept.
type TokenPersister interface {
	UpdateToken(accessToken string, expiresAt time.Time, refreshToken string) error
}

// Logger interface for custom logging implementations.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger discards everything.
type NoopLogger struct{}

// Debug implements Logger.
func (NoopLogger) Debug(string, map[string]interface{}) {}

// Info implements Logger.
func (NoopLogger) Info(string, map[string]interface{}) {}

// Warn implements Logger.
func (NoopLogger) Warn(string, map[string]interface{}) {}

// Error implements Logger.
func (NoopLogger) Error(string, map[string]interface{}) {}
