//go:build integration

// Package integration runs the client against a live amoCRM account.
package integration

import (
	"context"
	"os"
	"testing"

	"github.com/fivetwenty-io/amocrm-client/pkg/amoclient"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL string
	Token   string
	Verbose bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL: os.Getenv("AMOCRM_BASE_URL"),
		Token:   os.Getenv("AMOCRM_TOKEN"),
		Verbose: os.Getenv("AMOCRM_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" || config.Token == "" {
		t.Skip("AMOCRM_BASE_URL or AMOCRM_TOKEN not set, skipping integration test")
	}
}

// NewClient creates a client for the configured account.
func (config *TestConfig) NewClient(t *testing.T) amocrm.Client {
	t.Helper()

	clientConfig := &amocrm.Config{
		BaseURL:     config.BaseURL,
		AccessToken: config.Token,
		RetryMax:    2,
		RateLimit:   amocrm.DefaultRateLimit,
	}

	if config.Verbose {
		zapLogger, err := amoclient.NewConsoleLogger(true)
		if err != nil {
			t.Fatalf("creating logger: %v", err)
		}

		clientConfig.Logger = amoclient.NewZapLogger(zapLogger)
	}

	client, err := amoclient.New(context.Background(), clientConfig)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}
