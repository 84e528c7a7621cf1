package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/pkg/retrier"
	"go.uber.org/zap"
)

func fastRetrier() *retrier.Retrier {
	return retrier.New(
		retrier.WithMaxRetries(2),
		retrier.WithInitialInterval(time.Millisecond),
		retrier.WithRetryIf(retryable),
	)
}

func TestOpenAICompatibleClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"1","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompatibleClient(srv.URL, "key", "m", 0, time.Second, zap.NewNop())
	text, err := c.Complete(context.Background(), "system text", "user prompt")
	require.NoError(t, err)

	assert.Equal(t, "hello there", text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system text", got.Messages[0].Content)
	assert.Equal(t, "user prompt", got.Messages[1].Content)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
}

func TestOpenAICompatibleClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantText string
		wantCall int32
	}{
		{name: "unauthorized is not retried", status: http.StatusUnauthorized, wantText: "Authentication error (401)", wantCall: 1},
		{name: "forbidden is not retried", status: http.StatusForbidden, wantText: "Authorization error (403)", wantCall: 1},
		{name: "rate limit is retried", status: http.StatusTooManyRequests, wantText: "Rate limit exceeded (429)", wantCall: 3},
		{name: "server error is retried", status: http.StatusBadGateway, wantText: "Server error (502)", wantCall: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			c := NewOpenAICompatibleClient(srv.URL, "key", "m", 0, time.Second, zap.NewNop())
			c.retrier = fastRetrier()

			_, err := c.Complete(context.Background(), "s", "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrExternalAPI)
			assert.Contains(t, err.Error(), tt.wantText)
			assert.Equal(t, tt.wantCall, calls.Load())
		})
	}
}

func TestOpenAICompatibleClient_RetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompatibleClient(srv.URL, "key", "m", 0, time.Second, zap.NewNop())
	c.retrier = fastRetrier()

	text, err := c.Complete(context.Background(), "s", "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAICompatibleClient_EmptyKey(t *testing.T) {
	c := NewOpenAICompatibleClient("http://127.0.0.1:1", "", "m", 0, time.Second, zap.NewNop())
	_, err := c.Complete(context.Background(), "s", "p")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestOpenAICompatibleClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompatibleClient(srv.URL, "key", "m", 0, time.Second, zap.NewNop())
	_, err := c.Complete(context.Background(), "s", "p")
	assert.ErrorIs(t, err, domain.ErrExternalAPI)
}

func TestOpenAICompatibleClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewOpenAICompatibleClient(srv.URL, "key", "m", 0, 20*time.Millisecond, zap.NewNop())
	c.retrier = retrier.New(retrier.WithMaxRetries(0))

	_, err := c.Complete(context.Background(), "s", "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, domain.IsTimeout(err))
}
