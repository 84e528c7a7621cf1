package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultStrategyAuthor  = "User"
	DefaultStrategyVersion = "1.0"
	DefaultStrategyTag     = "investment"
)

// DefaultExpectedReturns is stored when the user gave no usable expected returns.
var DefaultExpectedReturns = json.RawMessage(`{"note":"Not specified"}`)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// StrategyRecord user-defined investment strategy.
type StrategyRecord struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	StrategyID      string          `json:"strategy_id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	RiskLevel       string          `json:"risk_level"`
	Tags            []string        `json:"tags"`
	Steps           []string        `json:"steps"`
	Requirements    []string        `json:"requirements"`
	ExpectedReturns json.RawMessage `json:"expected_returns"`
	Author          string          `json:"author"`
	Version         string          `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewStrategyID generates an identifier from the strategy name, the owner and the creation time.
// The random suffix keeps ids unique when the same name is saved twice within a second.
func NewStrategyID(name, username string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%s",
		slug(name),
		slug(username),
		now.Unix(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
	)
}

func slug(s string) string {
	s = slugCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed"
	}
	return s
}
