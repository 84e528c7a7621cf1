package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected Intent
	}{
		{
			name:     "current price question",
			message:  "What is the price of bitcoin?",
			expected: Intent{Kind: KindPrice, Coin: "bitcoin", Token: "bitcoin"},
		},
		{
			name:     "entry points",
			message:  "entry points for solana",
			expected: Intent{Kind: KindPrice, Coin: "solana", Token: "solana", WantsEntryPoints: true},
		},
		{
			name:     "ticker alias",
			message:  "what's the current price of ETH",
			expected: Intent{Kind: KindPrice, Coin: "ethereum", Token: "eth"},
		},
		{
			name:     "how much is",
			message:  "How much is matic today?",
			expected: Intent{Kind: KindPrice, Coin: "matic-network", Token: "matic"},
		},
		{
			name:     "known ticker price",
			message:  "btc price please",
			expected: Intent{Kind: KindPrice, Coin: "bitcoin", Token: "btc"},
		},
		{
			name:     "bare coin price",
			message:  "pendle price?",
			expected: Intent{Kind: KindPrice, Coin: "pendle", Token: "pendle"},
		},
		{
			name:     "generic what is",
			message:  "what is avax now?",
			expected: Intent{Kind: KindPrice, Coin: "avalanche-2", Token: "avax"},
		},
		{
			name:     "unknown coin passes through",
			message:  "what is the price of wojak?",
			expected: Intent{Kind: KindPrice, Coin: "wojak", Token: "wojak"},
		},
		{
			name:     "entry keywords on a price question",
			message:  "what is the price of sol, is it a good entry?",
			expected: Intent{Kind: KindPrice, Coin: "solana", Token: "sol", WantsEntryPoints: true},
		},
		{
			name:     "dated historical",
			message:  "What was the price of btc on 01-12-2024?",
			expected: Intent{Kind: KindHistoricalPrice, Coin: "bitcoin", Token: "btc", Date: "01-12-2024"},
		},
		{
			name:     "dated historical spelled out",
			message:  "historical price of ethereum on 1 December 2024",
			expected: Intent{Kind: KindHistoricalPrice, Coin: "ethereum", Token: "ethereum", Date: "1 December 2024"},
		},
		{
			name:     "dated historical ISO",
			message:  "what was the value of doge on 2023-05-17",
			expected: Intent{Kind: KindHistoricalPrice, Coin: "dogecoin", Token: "doge", Date: "2023-05-17"},
		},
		{
			name:     "undated historical",
			message:  "What is the historical price of cardano?",
			expected: Intent{Kind: KindGeneralHistorical, Coin: "cardano", Token: "cardano"},
		},
		{
			name:     "strategy payload",
			message:  "Save strategy\nName: DCA Plan\nCategory: yield\nDescription: buy weekly\nRisk Level: low",
			expected: Intent{Kind: KindStrategyCreation},
		},
		{
			name:     "strategy payload mentioning a coin price",
			message:  "Please add this strategy\nName: ETH dips\nDescription: buy when eth price drops 10%",
			expected: Intent{Kind: KindStrategyCreation},
		},
		{
			name:     "strategy without fields",
			message:  "Save strategy\nName: X",
			expected: Intent{Kind: KindStrategyCreation},
		},
		{
			name:     "please save this",
			message:  "Looks great, please save this",
			expected: Intent{Kind: KindStrategyCreation},
		},
		{
			name:     "create strategy request",
			message:  "Can you create a strategy for my savings?",
			expected: Intent{Kind: KindStrategyCreation},
		},
		{
			name:     "keyword is not a coin",
			message:  "What is staking?",
			expected: Intent{Kind: KindGeneralChat},
		},
		{
			name:     "greeting",
			message:  "hello",
			expected: Intent{Kind: KindGeneralChat},
		},
		{
			name:     "planning request",
			message:  "Help me plan an investment portfolio for 2025",
			expected: Intent{Kind: KindGeneralChat},
		},
		{
			name:     "stop word capture",
			message:  "how much is it worth to hold?",
			expected: Intent{Kind: KindGeneralChat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Route(tt.message))
		})
	}
}

func TestRoutePriority(t *testing.T) {
	// a dated question also matches the current-price patterns; the dated rule must win
	got := Route("what was the price of bitcoin on 5/6/2022, and what is the price of eth?")
	assert.Equal(t, KindHistoricalPrice, got.Kind)
	assert.Equal(t, "bitcoin", got.Coin)
	assert.Equal(t, "5/6/2022", got.Date)
}

func TestIsStrategyRequest(t *testing.T) {
	assert.True(t, IsStrategyRequest("store my strategy"))
	assert.True(t, IsStrategyRequest("PLEASE SAVE THIS"))
	assert.False(t, IsStrategyRequest("what strategy works in a bear market?"))
	assert.False(t, IsStrategyRequest("save me some time"))
}

func TestWantsEntryPoints(t *testing.T) {
	assert.True(t, WantsEntryPoints("when should i buy btc"))
	assert.True(t, WantsEntryPoints("good entry for eth?"))
	assert.True(t, WantsEntryPoints("buy levels for sol"))
	assert.False(t, WantsEntryPoints("what is the price of bitcoin?"))
}

func TestIntentIsPriceIntent(t *testing.T) {
	assert.True(t, Intent{Kind: KindHistoricalPrice}.IsPriceIntent())
	assert.True(t, Intent{Kind: KindPrice}.IsPriceIntent())
	assert.False(t, Intent{Kind: KindStrategyCreation}.IsPriceIntent())
	assert.False(t, Intent{Kind: KindGeneralChat}.IsPriceIntent())
}
