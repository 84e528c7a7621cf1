package pricereport

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/nova/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Current answers a plain price question.
func Current(name string, l Levels) string {
	m := l.Money
	return fmt.Sprintf("The current price of %s is %s\n\n"+
		"Key price levels for %s:\n"+
		"- Strong support: %s\n"+
		"- Support: %s\n"+
		"- Current price: %s\n"+
		"- Resistance: %s\n"+
		"- Strong resistance: %s\n\n"+
		"Based on these levels, consider:\n"+
		"- Accumulating at support levels (%s - %s)\n"+
		"- Taking partial profits at resistance (%s - %s)\n"+
		"- %s",
		name, m(l.Price),
		name,
		m(l.StrongSupport),
		m(l.Support),
		m(l.Price),
		m(l.Resistance),
		m(l.StrongResistance),
		m(l.Support), m(l.StrongSupport),
		m(l.Resistance), m(l.StrongResistance),
		l.stopLossAdvice(),
	)
}

// EntryPoints answers a question about where to enter and exit a position.
func EntryPoints(name string, l Levels) string {
	m := l.Money
	var b strings.Builder

	fmt.Fprintf(&b, "ENTRY POINTS ANALYSIS FOR %s:\n\n", strings.ToUpper(name))
	fmt.Fprintf(&b, "Current Price: %s\n\n", m(l.Price))

	b.WriteString("SUPPORT LEVELS (Potential Entry Points):\n")
	fmt.Fprintf(&b, "- Strong support: %s (Excellent entry, high probability of bounce)\n", m(l.StrongSupport))
	fmt.Fprintf(&b, "- Mid support: %s (Very good entry opportunity)\n", m(l.MidSupport))
	fmt.Fprintf(&b, "- Support: %s (Good entry, moderate probability of bounce)\n\n", m(l.Support))

	b.WriteString("RESISTANCE LEVELS (Potential Exit Points):\n")
	fmt.Fprintf(&b, "- Resistance: %s (Consider taking partial profits - 25-33%%)\n", m(l.Resistance))
	fmt.Fprintf(&b, "- Mid resistance: %s (Consider taking additional profits - 25-33%%)\n", m(l.MidResistance))
	fmt.Fprintf(&b, "- Strong resistance: %s (Consider taking significant profits - remaining position)\n\n", m(l.StrongResistance))

	b.WriteString("MARKET CONTEXT:\n")
	if l.Major {
		fmt.Fprintf(&b, "- %s is a major cryptocurrency with relatively lower volatility compared to smaller altcoins\n", name)
		b.WriteString("- Major cryptocurrencies tend to lead market trends and have higher liquidity\n")
		fmt.Fprintf(&b, "- Historical data shows %s often finds support at previous resistance levels\n\n", name)
	} else {
		fmt.Fprintf(&b, "- %s is a smaller cryptocurrency that may experience higher volatility than Bitcoin or Ethereum\n", name)
		b.WriteString("- Smaller cryptocurrencies often follow the general trend of Bitcoin but with amplified movements\n")
		b.WriteString("- Consider using smaller position sizes due to potentially higher risk\n\n")
	}

	b.WriteString("ENTRY STRATEGY RECOMMENDATIONS:\n")
	b.WriteString("1. Dollar-Cost Average (DCA): Split your investment into 4-5 equal parts and buy at regular intervals\n")
	fmt.Fprintf(&b, "2. Scaled Entry: Allocate 20%% at current price, 30%% at %s, and 50%% at %s\n", m(l.Support), m(l.StrongSupport))
	fmt.Fprintf(&b, "3. Limit Orders: Set buy orders at %s, %s, and %s to automatically purchase on dips\n\n",
		m(l.Support), m(l.MidSupport), m(l.StrongSupport))

	b.WriteString("EXIT STRATEGY RECOMMENDATIONS:\n")
	fmt.Fprintf(&b, "1. Scaled Exit: Sell 25%% at %s, 25%% at %s, and remaining 50%% at %s\n",
		m(l.Resistance), m(l.MidResistance), m(l.StrongResistance))
	fmt.Fprintf(&b, "2. Trailing Stop: Set a trailing stop 7-10%% below price after breaking %s\n", m(l.Resistance))
	fmt.Fprintf(&b, "3. Risk Management: %s\n\n", l.stopLossAdvice())

	b.WriteString("TIME HORIZON CONSIDERATIONS:\n")
	fmt.Fprintf(&b, "- Short-term traders: Focus on tighter ranges between %s and %s\n", m(l.Support), m(l.Resistance))
	fmt.Fprintf(&b, "- Medium-term investors: Accumulate between %s and %s, sell between %s and %s\n",
		m(l.MidSupport), m(l.StrongSupport), m(l.Resistance), m(l.StrongResistance))
	fmt.Fprintf(&b, "- Long-term investors: Focus on accumulation at or below %s, consider holding through volatility\n\n", m(l.Support))

	b.WriteString("Remember that these are technical levels only. Always consider fundamental factors, " +
		"on-chain metrics, and overall market conditions before making investment decisions.")

	return b.String()
}

// Cached prefixes a report built from a stale quote.
func Cached(report string, fetchedAt time.Time) string {
	return fmt.Sprintf("Live prices are unavailable right now, so this uses the last price I fetched at %s UTC.\n\n%s",
		fetchedAt.UTC().Format("15:04"), report)
}

// ChangeSince describes the move from past to current, or "" when current is unknown.
// Prices use the precision of coinID's volatility class.
func ChangeSince(coinID string, past decimal.Decimal, current *decimal.Decimal) string {
	if current == nil || !current.IsPositive() || !past.IsPositive() {
		return ""
	}
	pct := current.Sub(past).Div(past).Mul(hundred)
	return fmt.Sprintf("Since then, the price has changed by %s%% to the current price of %s.",
		pct.StringFixed(2), Money(coinID, *current))
}

// Historical answers a question about the price on a specific date.
func Historical(name, date string, past domain.PriceQuote, current *decimal.Decimal) string {
	return fmt.Sprintf("The price of %s on %s was %s. %s\n\nBased on historical data, here are some insights:\n%s",
		name, date, Money(past.CoinID, past.USD), ChangeSince(past.CoinID, past.USD, current), insights(past.CoinID))
}

// MonthAgo answers an undated historical question using the price 30 days back.
func MonthAgo(name, date string, past domain.PriceQuote, current *decimal.Decimal) string {
	return fmt.Sprintf("The price of %s one month ago (%s) was %s. %s\n\n"+
		"Historical price data can help identify trends and potential support/resistance levels.",
		name, date, Money(past.CoinID, past.USD), ChangeSince(past.CoinID, past.USD, current))
}

func insights(coinID string) string {
	switch coinID {
	case "bitcoin":
		return "- Bitcoin has historically shown lower volatility than other cryptocurrencies\n" +
			"- Major support levels tend to form at previous cycle lows\n" +
			"- Consider dollar-cost averaging rather than lump-sum investments\n" +
			"- Historical data suggests accumulating during 30%+ drawdowns from all-time highs"
	case "ethereum":
		return "- Ethereum has shown moderate volatility compared to smaller cryptocurrencies\n" +
			"- Major support levels tend to form at previous cycle lows\n" +
			"- Consider dollar-cost averaging rather than lump-sum investments\n" +
			"- Historical data suggests accumulating during 30%+ drawdowns from all-time highs"
	default:
		return "- Smaller cryptocurrencies typically show higher volatility than Bitcoin or Ethereum\n" +
			"- Consider smaller position sizes due to higher risk\n" +
			"- Set wider stop losses (15-20%) to account for volatility\n" +
			"- Look for accumulation opportunities during market-wide corrections"
	}
}
