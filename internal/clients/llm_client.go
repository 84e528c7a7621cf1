package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/pkg/retrier"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 2 * time.Second
	defaultMaxTokens  = 2048
)

type OpenAICompatibleClient struct {
	apiURL     string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	retrier    *retrier.Retrier
	logger     *zap.Logger
}

// NewOpenAICompatibleClient creates a new client for OpenAI-compatible APIs
func NewOpenAICompatibleClient(apiURL, apiKey, model string, maxTokens int, timeout time.Duration, logger *zap.Logger) *OpenAICompatibleClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAICompatibleClient{
		apiURL:    apiURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retrier: newLLMRetrier(logger),
		logger:  logger,
	}
}

func newLLMRetrier(logger *zap.Logger) *retrier.Retrier {
	return retrier.New(
		retrier.WithMaxRetries(defaultMaxRetries),
		retrier.WithInitialInterval(defaultRetryDelay),
		retrier.WithRetryIf(retryable),
		retrier.WithOnRetry(func(attempt int, err error) {
			logger.Warn("retrying LLM request", zap.Int("attempt", attempt), zap.Error(err))
		}),
	)
}

// chatRequest represents the request structure for OpenAI-compatible APIs
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents the response structure from OpenAI-compatible APIs
type chatResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Complete sends a chat request to the LLM API and returns the first choice.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.ConfigurationError("LLM API key is empty")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.maxTokens,
	}

	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (string, error) {
		return c.sendRequest(ctx, reqBody)
	})
}

func (c *OpenAICompatibleClient) sendRequest(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NetworkError(errors.Wrap(err, "LLM request failed"), isTimeout(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NetworkError(errors.Wrap(err, "failed to read response body"), isTimeout(err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError("LLM", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", domain.ExternalAPIError(resp.StatusCode, "failed to parse LLM response", err)
	}

	if chatResp.Error != nil {
		return "", domain.ExternalAPIError(resp.StatusCode,
			fmt.Sprintf("LLM API error: %s (type: %s, code: %s)", chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code), nil)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", domain.ExternalAPIError(resp.StatusCode, "LLM API returned no content", nil)
	}

	c.logger.Debug("LLM completion received", zap.String("model", chatResp.Model), zap.String("finish_reason", chatResp.Choices[0].FinishReason))

	return chatResp.Choices[0].Message.Content, nil
}
