// Package router classifies free-text messages into request intents using
// an ordered rule table. The first rule that yields a coin (or, for strategy
// creation, fires its trigger) wins; rule order is part of the contract.
package router

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vadiminshakov/nova/internal/domain"
)

const coinToken = `([a-z][a-z0-9-]*)`

// rule matches a message and reports the resulting intent.
type rule struct {
	name  string
	match func(text, lower string) (Intent, bool)
}

// Router evaluates rules in order.
type Router struct {
	rules []rule
}

var (
	datedHistorical = regexp.MustCompile(`(?i)(?:what was|historical|history|past|previous|what is the historical) (?:the )?(?:price|value) (?:of |for )?` +
		coinToken + ` (?:on|at|in) (\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{1,2}(?:st|nd|rd|th)? [a-z]+,? \d{2,4})`)

	undatedHistorical = regexp.MustCompile(`(?i)(?:what is|what's)(?: the)? historical (?:price|value)(?: of| for)? ` + coinToken)

	currentPrice = []*regexp.Regexp{
		regexp.MustCompile(`(?i)what(?:'s| is)(?: the)? (?:current |latest |recent )?(?:price|value) (?:of |for )?` + coinToken),
		regexp.MustCompile(`(?i)how much is ` + coinToken),
		regexp.MustCompile(`(?i)price of ` + coinToken),
		knownTickerPrice(),
		regexp.MustCompile(`(?i)^\s*` + coinToken + `\s+(?:current\s+)?price\s*\??\s*$`),
		regexp.MustCompile(`(?i)(?:what is|what's)(?: the)? (bitcoin|btc|ethereum|eth|solana|sol|cardano|ada)\b`),
	}

	entryPoints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:what (?:is|are)|price)(?: the)? (?:entry|entering) points?(?: for)? ` + coinToken),
		regexp.MustCompile(`(?i)(?:entry|entering) points?(?: for)? ` + coinToken),
		regexp.MustCompile(`(?i)(?:price|prices)(?: for| of)? ` + coinToken + ` (?:entry|entering)`),
	}

	genericWhatIs = regexp.MustCompile(`(?i)\bwhat(?:'s| is) ` + coinToken + `(?:\s+(?:now|today|currently))?\s*(?:\?|$)`)

	strategyVerb   = regexp.MustCompile(`(?i)\b(?:save|add|create|store)\b`)
	strategyLabel  = regexp.MustCompile(`(?im)^\s*name:`)
	strategyPhrase = "please save this"
)

// knownTickerPrice matches "<known coin> [current] price", e.g. "eth price".
func knownTickerPrice() *regexp.Regexp {
	tokens := domain.CoinTokens()
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	for i, t := range tokens {
		tokens[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(tokens, "|") + `)\s+(?:current\s+)?price\b`)
}

// notCoins are captures that never name a coin.
var notCoins = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "it": {}, "this": {}, "that": {}, "my": {}, "your": {},
	"for": {}, "of": {}, "is": {}, "are": {}, "up": {}, "going": {}, "happening": {},
	"new": {}, "next": {}, "crypto": {}, "cryptocurrency": {}, "blockchain": {},
	"nft": {}, "nfts": {}, "dca": {}, "hodl": {}, "web3": {}, "dao": {}, "apy": {},
	"apr": {}, "tvl": {}, "gas": {}, "mining": {}, "wallet": {}, "good": {}, "best": {},
}

func init() {
	for _, kw := range domain.InvestmentKeywords {
		notCoins[kw] = struct{}{}
	}
}

// New builds the router with the standard rule order.
func New() *Router {
	return &Router{rules: []rule{
		{name: "strategy_payload", match: matchStrategyPayload},
		{name: "dated_historical", match: matchDatedHistorical},
		{name: "undated_historical", match: matchUndatedHistorical},
		{name: "current_price", match: priceRule(currentPrice, false)},
		{name: "entry_points", match: priceRule(entryPoints, true)},
		{name: "what_is", match: priceRule([]*regexp.Regexp{genericWhatIs}, false)},
		{name: "strategy_creation", match: matchStrategyCreation},
	}}
}

var defaultRouter = New()

// Route classifies text with the default router.
func Route(text string) Intent {
	return defaultRouter.Route(text)
}

// Route returns the intent of the first matching rule, or general chat.
func (r *Router) Route(text string) Intent {
	lower := strings.ToLower(text)
	for _, rl := range r.rules {
		if intent, ok := rl.match(text, lower); ok {
			return intent
		}
	}
	return Intent{Kind: KindGeneralChat}
}

// IsStrategyRequest reports whether the message asks to store a strategy.
func IsStrategyRequest(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, strategyPhrase) {
		return true
	}
	return strings.Contains(lower, "strategy") && strategyVerb.MatchString(lower)
}

// matchStrategyPayload catches save requests that already carry labeled fields,
// so coin mentions inside the description cannot turn them into price queries.
func matchStrategyPayload(text, _ string) (Intent, bool) {
	if IsStrategyRequest(text) && strategyLabel.MatchString(text) {
		return Intent{Kind: KindStrategyCreation}, true
	}
	return Intent{}, false
}

func matchStrategyCreation(text, _ string) (Intent, bool) {
	if IsStrategyRequest(text) {
		return Intent{Kind: KindStrategyCreation}, true
	}
	return Intent{}, false
}

func matchDatedHistorical(text, lower string) (Intent, bool) {
	m := datedHistorical.FindStringSubmatch(text)
	if m == nil {
		return Intent{}, false
	}
	token, ok := coinFrom(m[1])
	if !ok {
		return Intent{}, false
	}
	return Intent{
		Kind:  KindHistoricalPrice,
		Coin:  domain.CoinID(token),
		Token: token,
		Date:  strings.TrimSpace(m[2]),
	}, true
}

func matchUndatedHistorical(text, _ string) (Intent, bool) {
	m := undatedHistorical.FindStringSubmatch(text)
	if m == nil {
		return Intent{}, false
	}
	token, ok := coinFrom(m[1])
	if !ok {
		return Intent{}, false
	}
	return Intent{Kind: KindGeneralHistorical, Coin: domain.CoinID(token), Token: token}, true
}

// priceRule tries each pattern in order and takes the first usable coin.
func priceRule(patterns []*regexp.Regexp, entry bool) func(text, lower string) (Intent, bool) {
	return func(text, lower string) (Intent, bool) {
		for _, re := range patterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				token, ok := coinFrom(m[1])
				if !ok {
					continue
				}
				return Intent{
					Kind:             KindPrice,
					Coin:             domain.CoinID(token),
					Token:            token,
					WantsEntryPoints: entry || WantsEntryPoints(lower),
				}, true
			}
		}
		return Intent{}, false
	}
}

func coinFrom(capture string) (string, bool) {
	token := strings.ToLower(strings.TrimSpace(capture))
	if token == "" {
		return "", false
	}
	if _, skip := notCoins[token]; skip {
		return "", false
	}
	return token, true
}

// WantsEntryPoints reports whether a price question asks for entry levels.
func WantsEntryPoints(lower string) bool {
	has := func(s string) bool { return strings.Contains(lower, s) }
	return has("entry point") ||
		has("entering point") ||
		(has("entry") && has("price")) ||
		(has("enter") && has("price")) ||
		(has("buy") && has("level")) ||
		(has("when") && has("buy")) ||
		(has("good") && has("entry"))
}
