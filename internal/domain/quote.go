package domain

import "github.com/shopspring/decimal"

// AsOfNow marks a quote for the current price.
const AsOfNow = "now"

// PriceQuote transient USD price of a coin, either current or on a dd-mm-yyyy date.
type PriceQuote struct {
	CoinID string
	USD    decimal.Decimal
	AsOf   string
}

// IsCurrent reports whether the quote holds the current price.
func (q PriceQuote) IsCurrent() bool {
	return q.AsOf == AsOfNow
}
