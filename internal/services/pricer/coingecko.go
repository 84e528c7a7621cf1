package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/nova/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout = 10 * time.Second

	vsCurrency    = "usd"
	maxDetailSize = 200
)

// CoinGecko price source client. Every request waits on the shared limiter first.
type CoinGecko struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    limiter
	logger     *zap.Logger
}

// NewCoinGecko creates a client; apiKey is optional and sent as the demo key header.
func NewCoinGecko(baseURL, apiKey string, timeout time.Duration, lim limiter, logger *zap.Logger) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CoinGecko{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    lim,
		logger:     logger,
	}
}

type historyResponse struct {
	ID         string `json:"id"`
	MarketData *struct {
		CurrentPrice map[string]decimal.Decimal `json:"current_price"`
	} `json:"market_data"`
}

// CurrentPrice returns the latest USD price of coinID.
func (c *CoinGecko) CurrentPrice(ctx context.Context, coinID string) (domain.PriceQuote, error) {
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", vsCurrency)

	body, err := c.get(ctx, coinID, "/simple/price?"+q.Encode())
	if err != nil {
		return domain.PriceQuote{}, err
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &prices); err != nil {
		return domain.PriceQuote{}, domain.InvalidResponseError(http.StatusOK, "decode simple price: "+err.Error())
	}

	price, ok := prices[coinID][vsCurrency]
	if !ok {
		return domain.PriceQuote{}, domain.PriceNotFoundError(coinID)
	}

	return domain.PriceQuote{CoinID: coinID, USD: price, AsOf: domain.AsOfNow}, nil
}

// HistoricalPrice returns the USD price of coinID on date (dd-mm-yyyy).
func (c *CoinGecko) HistoricalPrice(ctx context.Context, coinID, date string) (domain.PriceQuote, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("localization", "false")

	body, err := c.get(ctx, coinID, fmt.Sprintf("/coins/%s/history?%s", url.PathEscape(coinID), q.Encode()))
	if err != nil {
		return domain.PriceQuote{}, err
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PriceQuote{}, domain.InvalidResponseError(http.StatusOK, "decode history: "+err.Error())
	}
	if resp.MarketData == nil {
		return domain.PriceQuote{}, domain.PriceNotFoundError(coinID)
	}

	price, ok := resp.MarketData.CurrentPrice[vsCurrency]
	if !ok {
		return domain.PriceQuote{}, domain.PriceNotFoundError(coinID)
	}

	return domain.PriceQuote{CoinID: coinID, USD: price, AsOf: date}, nil
}

func (c *CoinGecko) get(ctx context.Context, coinID, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, errors.Wrap(err, "wait for price source slot")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create price request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("price source request failed", zap.String("coin", coinID), zap.Error(err))
		return nil, domain.NetworkError(err, isTimeout(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(errors.Wrap(err, "read price response"), isTimeout(err))
	}

	c.logger.Debug("price source response",
		zap.String("coin", coinID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.RateLimitError("price source returned 429")
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.PriceNotFoundError(coinID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, domain.InvalidResponseError(resp.StatusCode,
			fmt.Sprintf("status %d: %s", resp.StatusCode, domain.Truncate(string(body), maxDetailSize)))
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
