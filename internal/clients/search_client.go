package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultSearchBaseURL = "https://api.exa.ai"
	searchTimeout        = 15 * time.Second
)

// Searcher runs a web search and returns ranked results.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
}

// SearchResult single ranked hit.
type SearchResult struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
	Author        string  `json:"author,omitempty"`
}

type searchResponse struct {
	Results    []SearchResult `json:"results"`
	NextPageID string         `json:"next_page_id,omitempty"`
}

// ExaClient Exa search API client.
type ExaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewExaClient(baseURL, apiKey string, logger *zap.Logger) *ExaClient {
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	return &ExaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: searchTimeout},
		logger:     logger,
	}
}

// Search performs a single search request.
func (c *ExaClient) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.InvalidInputError("empty search query")
	}
	if c.apiKey == "" {
		return nil, domain.ConfigurationError("search API key is empty")
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("num_results", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/search?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create search request")
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NetworkError(errors.Wrap(err, "search request failed"), isTimeout(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(errors.Wrap(err, "read search response"), isTimeout(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ExternalAPIError(resp.StatusCode,
			"search request failed with status "+strconv.Itoa(resp.StatusCode)+": "+domain.Truncate(string(body), maxDetailSize), nil)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, domain.ExternalAPIError(resp.StatusCode, "failed to parse search response", err)
	}

	c.logger.Debug("search completed", zap.String("query", query), zap.Int("results", len(sr.Results)))

	return sr.Results, nil
}

// QueryBuilder composes project research queries.
type QueryBuilder struct {
	project string
	aspects []string
}

func NewQueryBuilder(project string) *QueryBuilder {
	return &QueryBuilder{project: project}
}

// WithAspects appends query terms such as "tokenomics" or "technology".
func (b *QueryBuilder) WithAspects(aspects ...string) *QueryBuilder {
	b.aspects = append(b.aspects, aspects...)
	return b
}

func (b *QueryBuilder) Build() string {
	terms := append([]string{b.project, "cryptocurrency"}, b.aspects...)
	return strings.Join(terms, " ")
}
