package chat

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/nova/internal/clients"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/internal/services/datenorm"
	"github.com/vadiminshakov/nova/internal/services/fallback"
	"github.com/vadiminshakov/nova/internal/services/pricer"
	"github.com/vadiminshakov/nova/internal/services/pricereport"
	"github.com/vadiminshakov/nova/internal/services/router"
	"go.uber.org/zap"
)

const (
	monthAgoDays = 30

	currentSearchNote = "Note: This information might not be real-time. For specific trading levels and recommendations, " +
		"I recommend checking specialized crypto data providers."
	historicalSearchNote = "Note: This information might not be from real-time price data. For more accurate historical data, " +
		"I recommend checking specialized crypto data providers."
)

// resolvePrice answers a price intent; it always produces text.
func (s *Service) resolvePrice(ctx context.Context, intent router.Intent) string {
	name := domain.CoinDisplayName(intent.Token)

	date := ""
	switch intent.Kind {
	case router.KindHistoricalPrice:
		d, err := datenorm.Normalize(intent.Date)
		if err != nil {
			s.logger.Info("unparseable date in price query", zap.String("date", intent.Date), zap.Error(err))
			return invalidDateMessage(intent.Date)
		}
		date = d
	case router.KindGeneralHistorical:
		date = datenorm.Date(s.now().UTC().AddDate(0, 0, -monthAgoDays))
	}

	p := fallback.New(s.logger,
		fallback.Tier{Name: "primary", Resolve: func(ctx context.Context, _ error) (string, error) {
			return s.priceReport(ctx, intent, name, date)
		}},
		fallback.Tier{Name: "cache", Resolve: func(context.Context, error) (string, error) {
			return s.cachedReport(intent, name)
		}},
		fallback.Tier{Name: "search", Resolve: func(ctx context.Context, _ error) (string, error) {
			return s.searchPrice(ctx, intent, date)
		}},
		fallback.Tier{Name: "apology", Resolve: func(_ context.Context, primary error) (string, error) {
			return priceApology(primary, name), nil
		}},
	)

	res, err := p.Run(ctx)
	if err != nil {
		// unreachable while the apology tier is last
		return priceApology(err, name)
	}
	if res.Primary != nil {
		s.logger.Warn("price source failed, answered from fallback",
			zap.String("coin", intent.Coin),
			zap.String("tier", res.Tier),
			zap.Error(res.Primary),
		)
	}
	return res.Answer
}

func (s *Service) priceReport(ctx context.Context, intent router.Intent, name, date string) (string, error) {
	switch intent.Kind {
	case router.KindHistoricalPrice, router.KindGeneralHistorical:
		past, err := s.prices.HistoricalPrice(ctx, intent.Coin, date)
		if err != nil {
			return "", err
		}
		current := s.currentForComparison(ctx, intent.Coin)
		if intent.Kind == router.KindHistoricalPrice {
			return pricereport.Historical(name, date, past, current), nil
		}
		return pricereport.MonthAgo(name, date, past, current), nil
	default:
		q, err := s.prices.CurrentPrice(ctx, intent.Coin)
		if err != nil {
			return "", err
		}
		return s.currentReport(intent, name, q), nil
	}
}

// currentForComparison best effort: a failure only drops the change sentence.
func (s *Service) currentForComparison(ctx context.Context, coinID string) *decimal.Decimal {
	q, err := s.prices.CurrentPrice(ctx, coinID)
	if err != nil {
		s.logger.Debug("current price unavailable for comparison", zap.String("coin", coinID), zap.Error(err))
		return nil
	}
	return &q.USD
}

func (s *Service) currentReport(intent router.Intent, name string, q domain.PriceQuote) string {
	levels := s.policy.Levels(q.CoinID, q.USD)
	if intent.WantsEntryPoints {
		return pricereport.EntryPoints(name, levels)
	}
	return pricereport.Current(name, levels)
}

func (s *Service) cachedReport(intent router.Intent, name string) (string, error) {
	if s.cache == nil || intent.Kind != router.KindPrice {
		return "", fallback.ErrContinue
	}
	cq, ok := s.cache.Cached(intent.Coin)
	if !ok {
		return "", fallback.ErrContinue
	}
	return pricereport.Cached(s.currentReport(intent, name, cq.Quote), cq.FetchedAt), nil
}

// searchPrice makes exactly one search call.
func (s *Service) searchPrice(ctx context.Context, intent router.Intent, date string) (string, error) {
	query := fmt.Sprintf("current price of %s cryptocurrency", intent.Token)
	note := currentSearchNote
	if intent.Kind != router.KindPrice {
		query = fmt.Sprintf("historical price of %s cryptocurrency on %s", intent.Token, date)
		note = historicalSearchNote
	}

	results, err := s.search.Search(ctx, query, s.opts.SearchResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fallback.ErrContinue
	}

	return fmt.Sprintf("Based on my research: %s\n\n%s", clients.Summarize(results), note), nil
}

func invalidDateMessage(raw string) string {
	return fmt.Sprintf("I couldn't understand the date %q. Please use a format like 01-12-2024, 2024-12-01 or 1 December 2024.", raw)
}

// priceApology picks the wording from the price source failure.
func priceApology(err error, name string) string {
	switch domain.KindOf(err) {
	case domain.KindRateLimitExceeded:
		return "The CoinGecko API rate limit has been reached. Please try again in a minute."
	case domain.KindPriceNotFound:
		return fmt.Sprintf("Could not find price information for %s. Please check that the cryptocurrency name or ticker is correct.", name)
	case domain.KindNetwork:
		if domain.IsTimeout(err) {
			return fmt.Sprintf("The price service took too long to respond while looking up %s. Please try again shortly.", name)
		}
		return fmt.Sprintf("The price service is unreachable right now, so I couldn't get real-time price information for %s. Please try again later.", name)
	case domain.KindInvalidResponse:
		return fmt.Sprintf("The price service returned an unexpected response for %s. Please try again later.", name)
	}
	return fmt.Sprintf("I couldn't find real-time price information for %s. Please check that the cryptocurrency name or ticker is correct and try again.", name)
}

var _ QuoteCache = (*pricer.Caching)(nil)
