// Package http is the default transport: it performs composed requests over
// HTTP with bearer authentication, session cookies and optional retries.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/auth"
	"github.com/fivetwenty-io/amocrm-client/internal/constants"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrNonObjectResponse = errors.New("response body is not a JSON object")
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "amocrm-client-go"

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client performs requests against one account.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *retryablehttp.Client
	logger       amocrm.Logger
	debug        bool
	userAgent    string
	chain        *amocrm.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger amocrm.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries on 429 and 5xx responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithInterceptors runs chain around every Perform call.
func WithInterceptors(chain *amocrm.InterceptorChain) Option {
	return func(c *Client) {
		c.chain = chain
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a transport for baseURL. Retries are off unless
// WithRetryConfig is given.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	base := cleanhttp.DefaultPooledClient()
	base.Timeout = constants.DefaultHTTPTimeout

	if jar, err := cookiejar.New(nil); err == nil {
		base.Jar = jar
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient:   retryClient,
		logger:       amocrm.NoopLogger{},
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the account address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req. Responses with status >= 400 return both the response
// and a *amocrm.TransportError. A 401 triggers one token refresh and retry.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.do(ctx, req)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized || c.tokenManager == nil {
		return resp, err
	}

	if refreshErr := c.tokenManager.RefreshToken(ctx); refreshErr != nil {
		c.logger.Debug("Token refresh after 401 failed", map[string]interface{}{"error": refreshErr.Error()})

		return resp, err
	}

	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"size":     len(body),
		})
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, amocrm.ParseTransportError(httpResp.StatusCode, body)
	}

	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Perform implements amocrm.Requester. Interceptors see the composed request
// before it is sent and the raw response after.
func (c *Client) Perform(ctx context.Context, req *amocrm.Request) (amocrm.Record, error) {
	if err := c.chain.ExecuteRequestInterceptors(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, &Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Body:    req.Body,
		Headers: req.Headers,
	})

	observed := &amocrm.Response{Error: err}
	if resp != nil {
		observed.StatusCode = resp.StatusCode
		observed.Headers = resp.Headers
		observed.Body = resp.Body
	}

	if interceptErr := c.chain.ExecuteResponseInterceptors(ctx, req, observed); interceptErr != nil && err == nil {
		err = interceptErr
	}

	if err != nil {
		return nil, err
	}

	return decodeRecord(resp.Body)
}

func decodeRecord(body []byte) (amocrm.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return amocrm.Record{}, nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return amocrm.Record{}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNonObjectResponse, value)
	}
}
