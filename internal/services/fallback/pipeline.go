// Package fallback runs an ordered list of answer sources, stopping at the
// first one that produces an answer.
package fallback

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrContinue signals that a tier has no answer and the next tier should run.
var ErrContinue = errors.New("fallback: continue")

// Tier produces an answer or an error; any error moves on to the next tier.
type Tier struct {
	Name    string
	Resolve func(ctx context.Context, prev error) (string, error)
}

// Pipeline ordered tiers.
type Pipeline struct {
	tiers  []Tier
	logger *zap.Logger
}

// New creates a pipeline evaluating tiers in the given order.
func New(logger *zap.Logger, tiers ...Tier) *Pipeline {
	return &Pipeline{tiers: tiers, logger: logger}
}

// Result answer plus the tier that produced it and the first tier's error.
type Result struct {
	Answer  string
	Tier    string
	Primary error
}

// Run evaluates tiers until one succeeds. Each tier receives the error of the
// first tier that failed, so later tiers can tailor their answer to it.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var primary error
	for _, tier := range p.tiers {
		answer, err := tier.Resolve(ctx, primary)
		if err == nil {
			return Result{Answer: answer, Tier: tier.Name, Primary: primary}, nil
		}

		if !errors.Is(err, ErrContinue) {
			p.logger.Debug("fallback tier failed", zap.String("tier", tier.Name), zap.Error(err))
		}
		if primary == nil {
			primary = err
		}
	}

	if primary == nil {
		primary = errors.New("no tiers configured")
	}
	return Result{Primary: primary}, errors.Wrap(primary, "all fallback tiers failed")
}
