// Package pricer resolves USD prices for coins from the CoinGecko API.
package pricer

import (
	"context"

	"github.com/vadiminshakov/nova/internal/domain"
)

// Pricer fetches current and historical USD quotes by canonical coin id.
type Pricer interface {
	CurrentPrice(ctx context.Context, coinID string) (domain.PriceQuote, error)
	HistoricalPrice(ctx context.Context, coinID, date string) (domain.PriceQuote, error)
}

type limiter interface {
	Acquire(ctx context.Context) error
}
