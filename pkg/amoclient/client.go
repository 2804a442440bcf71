// Package amoclient provides the main entry point for creating amoCRM API clients
package amoclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/amocrm-client/internal/auth"
	"github.com/fivetwenty-io/amocrm-client/internal/client"
	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/internal/http"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Static errors for err113 compliance.
var (
	ErrInvalidBaseURL = errors.New("invalid account base URL")
)

// New creates a client for the account in config. When only a refresh
// token is configured, a fresh access token is obtained before returning so
// that bad credentials fail early. The caller's config is not modified.
func New(ctx context.Context, callerConfig *amocrm.Config) (amocrm.Client, error) {
	if err := callerConfig.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := NormalizeBaseURL(callerConfig.BaseURL)
	if err != nil {
		return nil, err
	}

	config := *callerConfig
	config.BaseURL = baseURL

	tokenManager := createTokenManager(&config)

	if tokenManager != nil && config.ClientID != "" && config.AccessToken == "" {
		if err := tokenManager.RefreshToken(ctx); err != nil {
			return nil, fmt.Errorf("obtaining access token: %w", err)
		}
	}

	transport := http.NewClient(baseURL, tokenManager, createHTTPClientOptions(&config)...)

	return NewWithRequester(transport, config.Logger)
}

// NewWithRequester creates a client that performs every request through
// requester. It is the seam for custom transports and tests.
func NewWithRequester(requester amocrm.Requester, logger amocrm.Logger) (amocrm.Client, error) {
	c, err := client.New(requester, client.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithToken creates a client with a long-lived access token.
func NewWithToken(ctx context.Context, baseURL, token string) (amocrm.Client, error) {
	return New(ctx, &amocrm.Config{
		BaseURL:     baseURL,
		AccessToken: token,
		RateLimit:   amocrm.DefaultRateLimit,
	})
}

// NormalizeBaseURL turns an account reference into an origin. A bare
// subdomain gets the default account domain and a missing scheme becomes
// https.
func NormalizeBaseURL(raw string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return "", amocrm.ErrBaseURLRequired
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		if !strings.Contains(base, ".") && !strings.Contains(base, ":") {
			base = base + "." + constants.DefaultAccountDomain
		}

		base = "https://" + base
	}

	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}

	return base, nil
}

// createTokenManager picks a token manager from the configured credentials.
func createTokenManager(config *amocrm.Config) auth.TokenManager {
	if config.ClientID != "" && (config.RefreshToken != "" || config.AccessToken != "") {
		tokenURL := config.TokenURL
		if tokenURL == "" {
			tokenURL = auth.TokenURLFor(config.BaseURL)
		}

		oauthConfig := &auth.OAuth2Config{
			TokenURL:     tokenURL,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURI:  config.RedirectURI,
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
		}

		if config.TokenPersister != nil {
			return auth.NewConfigTokenManager(oauthConfig, config.TokenPersister, config.TokenExpiresAt)
		}

		manager := auth.NewOAuth2TokenManager(oauthConfig)
		if config.AccessToken != "" && !config.TokenExpiresAt.IsZero() {
			manager.SetToken(config.AccessToken, config.TokenExpiresAt)
		}

		return manager
	}

	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	return nil
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *amocrm.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	httpOpts = append(httpOpts, http.WithInterceptors(createInterceptorChain(config)))

	return httpOpts
}

// createInterceptorChain extends a copy of the caller's chain with request
// ids, rate limiting and, when a logger is set, request logging.
func createInterceptorChain(config *amocrm.Config) *amocrm.InterceptorChain {
	chain := config.Chain.Clone()

	chain.AddRequestInterceptor(amocrm.RequestIDInterceptor())

	if config.RateLimit > 0 {
		chain.AddRequestInterceptor(amocrm.RateLimitInterceptor(config.RateLimit))
	}

	if config.Logger != nil {
		chain.AddRequestInterceptor(amocrm.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(amocrm.LoggingResponseInterceptor(config.Logger))
	}

	return chain
}
