package pricer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/nova/internal/domain"
)

type mockPricer struct {
	mock.Mock
}

func (m *mockPricer) CurrentPrice(ctx context.Context, coinID string) (domain.PriceQuote, error) {
	args := m.Called(ctx, coinID)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

func (m *mockPricer) HistoricalPrice(ctx context.Context, coinID, date string) (domain.PriceQuote, error) {
	args := m.Called(ctx, coinID, date)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

func TestCaching_RemembersCurrentQuotes(t *testing.T) {
	cache, err := NewQuoteCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	quote := domain.PriceQuote{CoinID: "solana", USD: decimal.NewFromInt(150), AsOf: domain.AsOfNow}
	p := &mockPricer{}
	p.On("CurrentPrice", mock.Anything, "solana").Return(quote, nil).Once()
	p.On("CurrentPrice", mock.Anything, "wojak").Return(domain.PriceQuote{}, domain.PriceNotFoundError("wojak")).Once()

	c := NewCaching(p, cache)

	got, err := c.CurrentPrice(context.Background(), "solana")
	require.NoError(t, err)
	assert.Equal(t, quote, got)

	cached, ok := c.Cached("solana")
	require.True(t, ok)
	assert.True(t, quote.USD.Equal(cached.Quote.USD))
	assert.False(t, cached.FetchedAt.IsZero())

	_, err = c.CurrentPrice(context.Background(), "wojak")
	require.Error(t, err)
	_, ok = c.Cached("wojak")
	assert.False(t, ok)

	p.AssertExpectations(t)
}

func TestQuoteCache_IgnoresHistoricalQuotes(t *testing.T) {
	cache, err := NewQuoteCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	cache.Put(domain.PriceQuote{CoinID: "bitcoin", USD: decimal.NewFromInt(1), AsOf: "01-01-2020"})
	_, ok := cache.Get("bitcoin")
	assert.False(t, ok)
}
