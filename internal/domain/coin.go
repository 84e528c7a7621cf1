package domain

import "strings"

type coinInfo struct {
	id      string
	display string
}

// coins maps user-facing names and tickers to CoinGecko ids and display names.
var coins = map[string]coinInfo{
	"btc":       {"bitcoin", "Bitcoin (BTC)"},
	"bitcoin":   {"bitcoin", "Bitcoin"},
	"eth":       {"ethereum", "Ethereum (ETH)"},
	"ethereum":  {"ethereum", "Ethereum"},
	"sol":       {"solana", "Solana (SOL)"},
	"solana":    {"solana", "Solana"},
	"ada":       {"cardano", "Cardano (ADA)"},
	"cardano":   {"cardano", "Cardano"},
	"dot":       {"polkadot", "Polkadot (DOT)"},
	"polkadot":  {"polkadot", "Polkadot"},
	"doge":      {"dogecoin", "Dogecoin (DOGE)"},
	"dogecoin":  {"dogecoin", "Dogecoin"},
	"xrp":       {"ripple", "XRP"},
	"ripple":    {"ripple", "XRP (Ripple)"},
	"ltc":       {"litecoin", "Litecoin (LTC)"},
	"litecoin":  {"litecoin", "Litecoin"},
	"link":      {"chainlink", "Chainlink (LINK)"},
	"chainlink": {"chainlink", "Chainlink"},
	"uni":       {"uniswap", "Uniswap (UNI)"},
	"uniswap":   {"uniswap", "Uniswap"},
	"aave":      {"aave", "Aave"},
	"matic":     {"matic-network", "Polygon (MATIC)"},
	"polygon":   {"matic-network", "Polygon"},
	"avax":      {"avalanche-2", "Avalanche (AVAX)"},
	"avalanche": {"avalanche-2", "Avalanche"},
	"aero":      {"aerodrome-finance", "Aerodrome (AERO)"},
	"aerodrome": {"aerodrome-finance", "Aerodrome"},
}

var majorCoins = map[string]struct{}{
	"bitcoin":  {},
	"ethereum": {},
}

// CoinID maps a user token to its canonical price-source id.
// Unknown tokens are returned lowercased and otherwise unchanged.
func CoinID(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if c, ok := coins[token]; ok {
		return c.id
	}
	return token
}

// KnownCoin reports whether the token is a recognized name or ticker.
func KnownCoin(token string) bool {
	_, ok := coins[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// CoinDisplayName returns the name shown to users for the token they typed.
func CoinDisplayName(token string) string {
	token = strings.TrimSpace(token)
	if c, ok := coins[strings.ToLower(token)]; ok {
		return c.display
	}
	if token == "" {
		return token
	}
	return strings.ToUpper(token[:1]) + token[1:]
}

// IsMajorCoin reports whether the canonical coin id belongs to the low-volatility set.
func IsMajorCoin(coinID string) bool {
	_, ok := majorCoins[coinID]
	return ok
}

// CoinTokens returns every recognized name and ticker.
func CoinTokens() []string {
	tokens := make([]string, 0, len(coins))
	for token := range coins {
		tokens = append(tokens, token)
	}
	return tokens
}
