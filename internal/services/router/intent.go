package router

// Kind request type recognized by the router.
type Kind string

const (
	KindHistoricalPrice   Kind = "historical_price"
	KindGeneralHistorical Kind = "general_historical"
	KindPrice             Kind = "price"
	KindStrategyCreation  Kind = "strategy_creation"
	KindGeneralChat       Kind = "general_chat"
)

// Intent classification result. Coin is the canonical price-source id,
// Token the coin as the user typed it (lowercased), Date the raw date text.
type Intent struct {
	Kind             Kind
	Coin             string
	Token            string
	Date             string
	WantsEntryPoints bool
}

// IsPriceIntent reports whether the intent is answered from price data.
func (i Intent) IsPriceIntent() bool {
	switch i.Kind {
	case KindHistoricalPrice, KindGeneralHistorical, KindPrice:
		return true
	}
	return false
}
