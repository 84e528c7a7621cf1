package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strategyMessage = "Save strategy\nName: DCA Plan\nCategory: yield\nDescription: buy weekly\nRisk Level: low"

func TestField(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		label    string
		expected string
		found    bool
	}{
		{name: "simple", text: strategyMessage, label: "name:", expected: "DCA Plan", found: true},
		{name: "case insensitive", text: strategyMessage, label: "RISK LEVEL:", expected: "low", found: true},
		{name: "last line", text: "Version: 2.1", label: "version:", expected: "2.1", found: true},
		{name: "trims spaces", text: "Author:    Jane Doe   \nx", label: "author:", expected: "Jane Doe", found: true},
		{name: "absent", text: strategyMessage, label: "tags:", found: false},
		{name: "label without value", text: "Name:", label: "name:", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Field(tt.text, tt.label)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		label    string
		expected []string
	}{
		{
			name:     "comma separated",
			text:     "Tags: defi, yield , , stablecoins",
			label:    "tags:",
			expected: []string{"defi", "yield", "stablecoins"},
		},
		{
			name:     "numbered block on following lines",
			text:     "Steps:\n1. Buy ETH\n2. Stake it\n3. Compound rewards\nAuthor: me",
			label:    "steps:",
			expected: []string{"Buy ETH", "Stake it", "Compound rewards"},
		},
		{
			name:     "numbered block starting on label line",
			text:     "Steps: 1. Buy\n2. Hold",
			label:    "steps:",
			expected: []string{"Buy", "Hold"},
		},
		{
			name:     "single value",
			text:     "Requirements: a wallet",
			label:    "requirements:",
			expected: []string{"a wallet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := List(tt.text, tt.label)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestListAbsent(t *testing.T) {
	_, ok := List(strategyMessage, "steps:")
	assert.False(t, ok)
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "verbatim object",
			text:     `Expected Returns: {"1y": "10%"}`,
			expected: `{"1y": "10%"}`,
		},
		{
			name:     "loose pairs",
			text:     "Expected Returns: 1y: 10%, 3y: 40%",
			expected: `{"1y":"10%","3y":"40%"}`,
		},
		{
			name:     "quoted loose pairs",
			text:     `Expected Returns: "short": "5%"`,
			expected: `{"short":"5%"}`,
		},
		{
			name:     "raw fallback",
			text:     `Expected Returns: about "ten" percent`,
			expected: `{"value":"about \"ten\" percent"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JSON(tt.text, "expected returns:")
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractStrategy(t *testing.T) {
	d := ExtractStrategy(strategyMessage)

	assert.Equal(t, "DCA Plan", d.Name)
	assert.Equal(t, "yield", d.Category)
	assert.Equal(t, "buy weekly", d.Description)
	assert.Equal(t, "low", d.RiskLevel)
	assert.True(t, d.Complete())
	assert.Empty(t, d.Tags)
	assert.Empty(t, d.ExpectedReturns)
}

func TestExtractStrategyMissing(t *testing.T) {
	d := ExtractStrategy("Save strategy\nName: X")

	assert.False(t, d.Complete())
	assert.Equal(t, []string{LabelCategory, LabelDescription, LabelRiskLevel}, d.Missing())
}
