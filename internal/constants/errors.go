package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURL         = errors.New("no account configured, use 'amocrm login --base-url <account>' first")
	ErrNotAuthenticated  = errors.New("not authenticated, use 'amocrm login' first")
	ErrNoRefreshToken    = errors.New("no refresh token available, please run 'amocrm login' again")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrConfigKeyReadOnly = errors.New("token fields cannot be set via config command")
)

// Command errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidID           = errors.New("id must be a positive integer")
	ErrInvalidFieldFlag    = errors.New("field flags must look like key=value")
	ErrNoCredentials       = errors.New("an access token or an authorization code is required")
)
