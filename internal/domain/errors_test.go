package domain

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKindMatching(t *testing.T) {
	err := errors.Wrap(PriceNotFoundError("pepe"), "resolve price")

	assert.True(t, errors.Is(err, ErrPriceNotFound))
	assert.False(t, errors.Is(err, ErrRateLimitExceeded))
	assert.Equal(t, KindPriceNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "price not found: pepe")
}

func TestIsTimeout(t *testing.T) {
	timeout := NetworkError(fmt.Errorf("deadline exceeded"), true)
	plain := NetworkError(fmt.Errorf("connection refused"), false)

	assert.True(t, IsTimeout(errors.Wrap(timeout, "fetch")))
	assert.False(t, IsTimeout(plain))
	assert.True(t, errors.Is(plain, ErrNetwork))
	assert.False(t, IsTimeout(fmt.Errorf("other")))
}

func TestKindOfUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("boom")))
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestDatabaseErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := DatabaseError("save message", cause)

	assert.True(t, errors.Is(err, ErrDatabase))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database error: save message: disk full", err.Error())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("  short \n", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "цена...", Truncate("цена биткоина", 4))
	assert.Equal(t, "💰💰...", Truncate("💰💰💰", 2))
	assert.True(t, utf8.ValidString(Truncate("ééééé", 3)))
}
