package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	amohttp "github.com/fivetwenty-io/amocrm-client/internal/http"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTokenUnavailable = errors.New("token unavailable")

// MockTokenManager for testing.
type MockTokenManager struct {
	token      string
	err        error
	refreshed  string
	refreshErr error
	refreshes  int
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	m.refreshes++
	if m.refreshErr != nil {
		return m.refreshErr
	}

	if m.refreshed != "" {
		m.token = m.refreshed
	}

	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v4/leads", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Equal(t, amohttp.DefaultUserAgent, request.Header.Get("User-Agent"))

			_ = json.NewEncoder(writer).Encode(map[string]any{"id": 1, "name": "Deal"})
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, &MockTokenManager{token: "test-token"})

		resp, err := client.Do(context.Background(), &amohttp.Request{Method: "GET", Path: "/api/v4/leads"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]any

		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Equal(t, "Deal", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v4/companies", request.URL.Path)
			assert.Equal(t, "2", request.URL.Query().Get("page"))
			assert.Equal(t, "1700000000", request.URL.Query().Get("filter[updated_at][from]"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		query := url.Values{}
		query.Set("page", "2")
		query.Set("filter[updated_at][from]", "1700000000")

		resp, err := client.Get(context.Background(), "/api/v4/companies", query)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body and headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PATCH", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
			assert.Equal(t, "Tue, 14 Nov 2023 22:13:20 GMT", request.Header.Get("If-Modified-Since"))

			var body []map[string]any

			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Len(t, body, 1)
			assert.Equal(t, "ACME", body[0]["name"])
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		_, err := client.Do(context.Background(), &amohttp.Request{
			Method:  "PATCH",
			Path:    "/api/v4/companies",
			Body:    []map[string]any{{"id": 1, "name": "ACME"}},
			Headers: map[string]string{"If-Modified-Since": "Tue, 14 Nov 2023 22:13:20 GMT"},
		})
		require.NoError(t, err)
	})

	t.Run("legacy error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"response":{"error":"Authorization failed","error_code":"110"}}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/private/api/v2/json/accounts/current", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var transportErr *amocrm.TransportError

		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, amocrm.LegacyCodeAuthFailed, transportErr.Code)
		assert.Equal(t, "Authorization failed", transportErr.Message)
		assert.True(t, amocrm.IsUnauthorized(err))
	})

	t.Run("problem error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/problem+json")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"title":"Not Found","status":404,"detail":"Lead not found"}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/api/v4/leads/1", nil)
		require.Error(t, err)
		assert.True(t, amocrm.IsNotFound(err))
		assert.Contains(t, err.Error(), "Lead not found")
	})

	t.Run("token error", func(t *testing.T) {
		t.Parallel()

		client := amohttp.NewClient("http://example.invalid", &MockTokenManager{err: errTokenUnavailable})

		_, err := client.Get(context.Background(), "/api/v4/leads", nil)
		require.ErrorIs(t, err, errTokenUnavailable)
	})
}

func TestClient_UnauthorizedRefresh(t *testing.T) {
	t.Parallel()

	t.Run("retries once with refreshed token", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&calls, 1)

			if request.Header.Get("Authorization") != "Bearer fresh" {
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			_, _ = writer.Write([]byte(`{"id":7}`))
		}))
		defer server.Close()

		tokens := &MockTokenManager{token: "stale", refreshed: "fresh"}
		client := amohttp.NewClient(server.URL, tokens)

		resp, err := client.Get(context.Background(), "/api/v4/account", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 1, tokens.refreshes)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("refresh failure keeps original error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		logger := &MockLogger{}
		tokens := &MockTokenManager{token: "stale", refreshErr: errTokenUnavailable}
		client := amohttp.NewClient(server.URL, tokens, amohttp.WithLogger(logger))

		_, err := client.Get(context.Background(), "/api/v4/account", nil)
		require.Error(t, err)
		assert.True(t, amocrm.IsUnauthorized(err))
		assert.Equal(t, 1, tokens.refreshes)
		assert.NotEmpty(t, logger.logs)
	})
}

func TestClient_Retry(t *testing.T) {
	t.Parallel()

	t.Run("retries server errors when enabled", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			_, _ = writer.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil,
			amohttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Get(context.Background(), "/api/v4/leads", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("retries too many requests", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				writer.WriteHeader(http.StatusTooManyRequests)

				return
			}

			_, _ = writer.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil,
			amohttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		_, err := client.Get(context.Background(), "/api/v4/leads", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&calls, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil,
			amohttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond))

		_, err := client.Get(context.Background(), "/api/v4/leads", nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&calls, 1)
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/api/v4/leads", nil)
		require.Error(t, err)
		assert.True(t, amocrm.IsTransportError(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestClient_Perform(t *testing.T) {
	t.Parallel()

	t.Run("decodes object responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"response":{"account":{"id":42}}}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		record, err := client.Perform(context.Background(), amocrm.NewRequest(http.MethodGet, "/private/api/v2/json/accounts/current"))
		require.NoError(t, err)
		assert.Contains(t, record, "response")
	})

	t.Run("empty body is an empty record", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		record, err := client.Perform(context.Background(), amocrm.NewRequest(http.MethodPost, "/api/v4/leads/1/link"))
		require.NoError(t, err)
		assert.NotNil(t, record)
		assert.Empty(t, record)
	})

	t.Run("non-object body is rejected", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`[1,2,3]`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		_, err := client.Perform(context.Background(), amocrm.NewRequest(http.MethodGet, "/api/v4/leads"))
		require.ErrorIs(t, err, amohttp.ErrNonObjectResponse)
	})

	t.Run("runs interceptors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.NotEmpty(t, request.Header.Get(amocrm.HeaderRequestID))
			assert.Equal(t, "yes", request.Header.Get("X-Test"))
			_, _ = writer.Write([]byte(`{}`))
		}))
		defer server.Close()

		logger := &MockLogger{}

		chain := amocrm.NewInterceptorChain()
		chain.AddRequestInterceptor(amocrm.RequestIDInterceptor())
		chain.AddRequestInterceptor(amocrm.HeaderInterceptor(map[string]string{"X-Test": "yes"}))
		chain.AddResponseInterceptor(amocrm.LoggingResponseInterceptor(logger))

		client := amohttp.NewClient(server.URL, nil, amohttp.WithInterceptors(chain))

		_, err := client.Perform(context.Background(), amocrm.NewRequest(http.MethodGet, "/api/v4/account"))
		require.NoError(t, err)
		require.Len(t, logger.logs, 1)
		assert.Equal(t, "API Response", logger.logs[0]["msg"])
	})

	t.Run("session cookies are kept", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				http.SetCookie(writer, &http.Cookie{Name: "session_id", Value: "abc", Path: "/"})
			} else {
				cookie, err := request.Cookie("session_id")
				assert.NoError(t, err)

				if cookie != nil {
					assert.Equal(t, "abc", cookie.Value)
				}
			}

			_, _ = writer.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := amohttp.NewClient(server.URL, nil)

		for i := 0; i < 2; i++ {
			_, err := client.Perform(context.Background(), amocrm.NewRequest(http.MethodGet, "/private/api/v2/json/accounts/current"))
			require.NoError(t, err)
		}
	})
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := amohttp.NewClient(server.URL, nil, amohttp.WithLogger(logger), amohttp.WithDebug(true))

	_, err := client.Get(context.Background(), "/api/v4/account", nil)
	require.NoError(t, err)
	require.Len(t, logger.logs, 2)
	assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
	assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
}
