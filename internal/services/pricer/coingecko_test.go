package pricer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/nova/internal/domain"
	"go.uber.org/zap"
)

type countingLimiter struct {
	calls atomic.Int32
}

func (l *countingLimiter) Acquire(context.Context) error {
	l.calls.Add(1)
	return nil
}

func newTestSource(t *testing.T, handler http.HandlerFunc) (*CoinGecko, *countingLimiter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	lim := &countingLimiter{}
	return NewCoinGecko(srv.URL, "", time.Second, lim, zap.NewNop()), lim
}

func TestCoinGecko_CurrentPrice(t *testing.T) {
	src, lim := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":65123.45}}`))
	})

	q, err := src.CurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", q.CoinID)
	assert.True(t, decimal.RequireFromString("65123.45").Equal(q.USD))
	assert.True(t, q.IsCurrent())
	assert.Equal(t, int32(1), lim.calls.Load())
}

func TestCoinGecko_CurrentPriceNotFound(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := src.CurrentPrice(context.Background(), "wojak")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPriceNotFound))
}

func TestCoinGecko_HistoricalPrice(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/history", r.URL.Path)
		assert.Equal(t, "01-12-2024", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(`{"id":"ethereum","market_data":{"current_price":{"usd":3701.5,"eur":3500}}}`))
	})

	q, err := src.HistoricalPrice(context.Background(), "ethereum", "01-12-2024")
	require.NoError(t, err)
	assert.Equal(t, "01-12-2024", q.AsOf)
	assert.True(t, decimal.RequireFromString("3701.5").Equal(q.USD))
}

func TestCoinGecko_HistoricalPriceWithoutMarketData(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"solana"}`))
	})

	_, err := src.HistoricalPrice(context.Background(), "solana", "01-01-2015")
	assert.True(t, errors.Is(err, domain.ErrPriceNotFound))
}

func TestCoinGecko_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.ErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"status":{"error_code":429}}`, kind: domain.KindRateLimitExceeded},
		{name: "unknown coin", status: http.StatusNotFound, body: `{"error":"coin not found"}`, kind: domain.KindPriceNotFound},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, kind: domain.KindInvalidResponse},
		{name: "malformed payload", status: http.StatusOK, body: `{"bitcoin":`, kind: domain.KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := src.CurrentPrice(context.Background(), "bitcoin")
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestCoinGecko_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":1}}`))
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, "", 20*time.Millisecond, nil, zap.NewNop())
	_, err := src.CurrentPrice(context.Background(), "bitcoin")
	require.Error(t, err)
	assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
	assert.True(t, domain.IsTimeout(err))
}

func TestCoinGecko_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	src := NewCoinGecko(url, "", time.Second, nil, zap.NewNop())
	_, err := src.CurrentPrice(context.Background(), "bitcoin")
	assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
	assert.False(t, domain.IsTimeout(err))
}

func TestCoinGecko_SendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"aave":{"usd":101.2}}`))
	}))
	defer srv.Close()

	src := NewCoinGecko(srv.URL, "demo-key", time.Second, nil, zap.NewNop())
	_, err := src.CurrentPrice(context.Background(), "aave")
	require.NoError(t, err)
}
