// Package pricereport turns price quotes into the text answers shown to users:
// support/resistance bands, entry-point analysis and historical comparisons.
package pricereport

import (
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/nova/internal/domain"
)

const (
	majorPlaces int32 = 2
	minorPlaces int32 = 4
)

// Bands multipliers applied to the current price.
type Bands struct {
	StrongSupport    decimal.Decimal
	Support          decimal.Decimal
	Resistance       decimal.Decimal
	StrongResistance decimal.Decimal
}

// Policy band multipliers per volatility class.
type Policy struct {
	Major Bands
	Minor Bands
}

// DefaultPolicy tighter bands for major coins, wider for the rest.
func DefaultPolicy() Policy {
	return Policy{
		Major: Bands{
			StrongSupport:    decimal.RequireFromString("0.85"),
			Support:          decimal.RequireFromString("0.92"),
			Resistance:       decimal.RequireFromString("1.08"),
			StrongResistance: decimal.RequireFromString("1.15"),
		},
		Minor: Bands{
			StrongSupport:    decimal.RequireFromString("0.78"),
			Support:          decimal.RequireFromString("0.85"),
			Resistance:       decimal.RequireFromString("1.15"),
			StrongResistance: decimal.RequireFromString("1.22"),
		},
	}
}

// Levels price levels derived from one quote.
type Levels struct {
	Major            bool
	Price            decimal.Decimal
	StrongSupport    decimal.Decimal
	MidSupport       decimal.Decimal
	Support          decimal.Decimal
	Resistance       decimal.Decimal
	MidResistance    decimal.Decimal
	StrongResistance decimal.Decimal
}

var two = decimal.NewFromInt(2)

// Levels computes bands for coinID around price.
func (p Policy) Levels(coinID string, price decimal.Decimal) Levels {
	major := domain.IsMajorCoin(coinID)
	b := p.Minor
	if major {
		b = p.Major
	}

	l := Levels{
		Major:            major,
		Price:            price,
		StrongSupport:    price.Mul(b.StrongSupport),
		Support:          price.Mul(b.Support),
		Resistance:       price.Mul(b.Resistance),
		StrongResistance: price.Mul(b.StrongResistance),
	}
	l.MidSupport = l.Support.Add(l.StrongSupport).Div(two)
	l.MidResistance = l.Resistance.Add(l.StrongResistance).Div(two)
	return l
}

// Money renders v in dollars with the precision of the volatility class.
func (l Levels) Money(v decimal.Decimal) string {
	return "$" + v.StringFixed(places(l.Major))
}

// Money renders v in dollars with the precision of coinID's volatility class.
func Money(coinID string, v decimal.Decimal) string {
	return "$" + v.StringFixed(places(domain.IsMajorCoin(coinID)))
}

func places(major bool) int32 {
	if major {
		return majorPlaces
	}
	return minorPlaces
}

func (l Levels) stopLossAdvice() string {
	if l.Major {
		return "Setting stop losses 5-8% below your entry price"
	}
	return "Setting stop losses 10-15% below your entry price for this more volatile asset"
}
