package amocrm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRejected = errors.New("rejected")

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.messages = append(l.messages, msg) }

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := amocrm.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, amocrm.NewRequest("GET", "/api/v4/leads"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := amocrm.NewInterceptorChain()

	var called bool

	chain.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		return errRejected
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), amocrm.NewRequest("GET", "/"))
	require.ErrorIs(t, err, errRejected)
	assert.False(t, called)
}

func TestInterceptorChain_Clone(t *testing.T) {
	original := amocrm.NewInterceptorChain()

	var calls []string

	original.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		calls = append(calls, "original")

		return nil
	})

	clone := original.Clone()
	clone.AddRequestInterceptor(func(ctx context.Context, req *amocrm.Request) error {
		calls = append(calls, "added")

		return nil
	})

	require.NoError(t, original.ExecuteRequestInterceptors(context.Background(), amocrm.NewRequest("GET", "/")))
	assert.Equal(t, []string{"original"}, calls)

	calls = nil
	require.NoError(t, clone.ExecuteRequestInterceptors(context.Background(), amocrm.NewRequest("GET", "/")))
	assert.Equal(t, []string{"original", "added"}, calls)

	var empty *amocrm.InterceptorChain
	assert.NotNil(t, empty.Clone())
}

func TestInterceptorChain_Nil(t *testing.T) {
	var chain *amocrm.InterceptorChain

	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), &amocrm.Request{}))
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), &amocrm.Request{}, &amocrm.Response{}))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := amocrm.RequestIDInterceptor()

	req := &amocrm.Request{Method: "GET", Path: "/"}
	require.NoError(t, interceptor(context.Background(), req))
	assert.Len(t, req.Headers[amocrm.HeaderRequestID], 36)

	preset := amocrm.NewRequest("GET", "/")
	preset.SetHeader(amocrm.HeaderRequestID, "fixed")
	require.NoError(t, interceptor(context.Background(), preset))
	assert.Equal(t, "fixed", preset.Headers[amocrm.HeaderRequestID])
}

func TestRateLimitInterceptor(t *testing.T) {
	interceptor := amocrm.RateLimitInterceptor(1)

	req := amocrm.NewRequest("GET", "/")
	require.NoError(t, interceptor(context.Background(), req))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := interceptor(ctx, req)
	require.Error(t, err)
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	req := amocrm.NewRequest("GET", "/api/v4/leads")

	require.NoError(t, amocrm.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, amocrm.LoggingResponseInterceptor(logger)(context.Background(), req, &amocrm.Response{StatusCode: 200}))
	require.NoError(t, amocrm.LoggingResponseInterceptor(logger)(context.Background(), req,
		&amocrm.Response{StatusCode: 500, Error: errRejected}))

	assert.Equal(t, []string{"API Request", "API Response", "API Response Error"}, logger.messages)
}

func TestHeaderInterceptor(t *testing.T) {
	req := &amocrm.Request{}
	require.NoError(t, amocrm.HeaderInterceptor(map[string]string{"X-Client": "cli"})(context.Background(), req))
	assert.Equal(t, "cli", req.Headers["X-Client"])
}
