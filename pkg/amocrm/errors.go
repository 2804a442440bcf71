package amocrm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Configuration failures. They are raised before any request is composed.
var (
	ErrUnknownField          = errors.New("unknown field")
	ErrIdentityRequired      = errors.New("identity is required")
	ErrInvalidIdentity       = errors.New("identity must be a positive integer")
	ErrMixedBatch            = errors.New("batch mixes entity types")
	ErrEmptyBatch            = errors.New("batch is empty")
	ErrUnsupportedGeneration = errors.New("operation is not supported by the API generation")
	ErrInvalidLink           = errors.New("invalid link descriptor")
	ErrInvalidValue          = errors.New("invalid field value")
)

// Client setup failures.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrBaseURLRequired  = errors.New("base URL is required")
	ErrRequesterMissing = errors.New("requester is required")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Legacy API error codes worth naming.
const (
	LegacyCodeAuthFailed      = 110
	LegacyCodeAccountNotFound = 101
	LegacyCodeNoAccess        = 113
	LegacyCodeEmptyResponse   = 244
)

// ConfigurationError describes a usage error detected before any network
// interaction.
type ConfigurationError struct {
	Entity EntityType
	Field  string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var b strings.Builder

	b.WriteString("configuration error")

	if e.Entity != "" {
		b.WriteString(" on ")
		b.WriteString(string(e.Entity))
	}

	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}

	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying sentinel.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(entity EntityType, op, field string, err error) *ConfigurationError {
	return &ConfigurationError{Entity: entity, Op: op, Field: field, Err: err}
}

// TransportError is a failed exchange with the API. Code and Message come
// from whichever error body the responding generation uses.
type TransportError struct {
	StatusCode int    `json:"status"  yaml:"status"`
	Code       int    `json:"code"    yaml:"code"`
	Title      string `json:"title"   yaml:"title"`
	Message    string `json:"message" yaml:"message"`
	Detail     string `json:"detail"  yaml:"detail"`
	Body       []byte `json:"-"       yaml:"-"`
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Title
	}

	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	if e.Detail != "" && e.Detail != msg {
		msg = msg + ": " + e.Detail
	}

	if e.Code != 0 {
		return fmt.Sprintf("amocrm: %s (status: %d, code: %d)", msg, e.StatusCode, e.Code)
	}

	return fmt.Sprintf("amocrm: %s (status: %d)", msg, e.StatusCode)
}

type legacyErrorBody struct {
	Response struct {
		Error     string          `json:"error"`
		ErrorCode json.RawMessage `json:"error_code"`
	} `json:"response"`
}

type problemBody struct {
	Title  string `json:"title"`
	Type   string `json:"type"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// ParseTransportError decodes an error body of either generation. Bodies
// that are not JSON are kept verbatim in Body.
func ParseTransportError(statusCode int, body []byte) *TransportError {
	transportErr := &TransportError{StatusCode: statusCode, Body: body}

	var legacy legacyErrorBody
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.Response.Error != "" {
		transportErr.Message = legacy.Response.Error
		transportErr.Code = parseErrorCode(legacy.Response.ErrorCode)

		return transportErr
	}

	var problem problemBody
	if err := json.Unmarshal(body, &problem); err == nil && (problem.Title != "" || problem.Detail != "") {
		transportErr.Title = problem.Title
		transportErr.Detail = problem.Detail

		if problem.Status != 0 {
			transportErr.Code = problem.Status
		}

		return transportErr
	}

	return transportErr
}

func parseErrorCode(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, _ = strconv.Atoi(s)
	}

	return n
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError

	return errors.As(err, &cfgErr)
}

// IsTransportError reports whether err is a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError

	return errors.As(err, &transportErr)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == http.StatusNotFound ||
			transportErr.Code == LegacyCodeAccountNotFound
	}

	return false
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == http.StatusUnauthorized ||
			transportErr.Code == LegacyCodeAuthFailed
	}

	return false
}

// IsTooManyRequests checks if the error is a rate limit rejection.
func IsTooManyRequests(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}
