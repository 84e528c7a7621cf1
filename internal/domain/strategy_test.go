package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStrategyID(t *testing.T) {
	now := time.Unix(1700000000, 0)

	id := NewStrategyID("DCA Plan", "Alice", now)
	assert.Regexp(t, regexp.MustCompile(`^dca_plan_alice_1700000000_[0-9a-f]{8}$`), id)

	other := NewStrategyID("DCA Plan", "Alice", now)
	assert.NotEqual(t, id, other)
}

func TestNewStrategyIDEmptyName(t *testing.T) {
	id := NewStrategyID("  !! ", "bob", time.Unix(1, 0))
	assert.Regexp(t, `^unnamed_bob_1_`, id)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"defi", "yield"}, NormalizeTags([]string{" DeFi", "", "yield", "defi", "  "}))
	assert.Empty(t, NormalizeTags(nil))
}
