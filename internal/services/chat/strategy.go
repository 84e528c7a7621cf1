package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/extractor"
	"go.uber.org/zap"
)

// StrategyHelp is returned when a strategy request lacks required fields.
const StrategyHelp = "To add a strategy, please provide at least the following information:\n\n" +
	"Name: [strategy name]\n" +
	"Category: [category]\n" +
	"Description: [description]\n" +
	"Risk Level: [low/medium/high]\n\n" +
	"Optional fields:\n" +
	"Tags: [comma-separated tags]\n" +
	"Steps: [numbered steps]\n" +
	"Requirements: [numbered requirements]\n" +
	"Expected Returns: [JSON object with timeframes]\n" +
	"Author: [author name]\n" +
	"Version: [version number]"

func (s *Service) createStrategy(ctx context.Context, u domain.User, message string) (string, error) {
	draft := extractor.ExtractStrategy(message)
	if missing := draft.Missing(); len(missing) > 0 {
		s.logger.Info("strategy request incomplete", zap.String("user", u.Username), zap.Strings("missing", missing))
		return StrategyHelp, nil
	}

	rec := s.strategyRecord(u, draft)
	if _, err := s.store.CreateStrategy(ctx, rec); err != nil {
		return "", err
	}

	s.logger.Info("strategy saved", zap.String("user", u.Username), zap.String("strategy_id", rec.StrategyID))

	return fmt.Sprintf("Strategy '%s' has been successfully added to your investment strategies. "+
		"You can refer to it in future conversations.", rec.Name), nil
}

func (s *Service) strategyRecord(u domain.User, d extractor.StrategyDraft) domain.StrategyRecord {
	tags := domain.NormalizeTags(d.Tags)
	if len(tags) == 0 {
		tags = []string{domain.DefaultStrategyTag}
	}

	returns := domain.DefaultExpectedReturns
	if d.ExpectedReturns != "" && json.Valid([]byte(d.ExpectedReturns)) {
		returns = json.RawMessage(d.ExpectedReturns)
	}

	author := d.Author
	if author == "" {
		author = domain.DefaultStrategyAuthor
	}
	version := d.Version
	if version == "" {
		version = domain.DefaultStrategyVersion
	}

	return domain.StrategyRecord{
		UserID:          u.ID,
		StrategyID:      domain.NewStrategyID(d.Name, u.Username, s.now()),
		Name:            d.Name,
		Category:        d.Category,
		Description:     d.Description,
		RiskLevel:       d.RiskLevel,
		Tags:            tags,
		Steps:           d.Steps,
		Requirements:    d.Requirements,
		ExpectedReturns: returns,
		Author:          author,
		Version:         version,
	}
}

func mentionsStrategies(message string) bool {
	return strings.Contains(strings.ToLower(message), "strateg")
}

// savedStrategies renders the user's stored strategies as knowledge for the prompt.
// A failed read only costs the context.
func (s *Service) savedStrategies(ctx context.Context, u domain.User) []domain.KnowledgeEntry {
	records, err := s.store.Strategies(ctx, u.ID)
	if err != nil {
		s.logger.Warn("failed to load saved strategies", zap.String("user", u.Username), zap.Error(err))
		return nil
	}

	entries := make([]domain.KnowledgeEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, domain.KnowledgeEntry{
			UserID:   u.ID,
			SourceID: r.StrategyID,
			Content: fmt.Sprintf("Saved strategy %q (%s, %s risk): %s",
				r.Name, r.Category, r.RiskLevel, r.Description),
			Tags: r.Tags,
		})
	}
	return entries
}
