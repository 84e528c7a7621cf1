package clients

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
	"github.com/vadiminshakov/nova/pkg/retrier"
	"go.uber.org/zap"
)

const DefaultAnthropicModel = "claude-3-opus-20240229"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
	hasKey    bool
	retrier   *retrier.Retrier
	logger    *zap.Logger
}

// NewAnthropicClient creates a client. baseURL may be empty for the public endpoint.
func NewAnthropicClient(apiKey, baseURL, model string, maxTokens int, timeout time.Duration, logger *zap.Logger) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		// retries go through pkg/retrier
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		hasKey:    apiKey != "",
		retrier:   newLLMRetrier(logger),
		logger:    logger,
	}
}

// Complete sends one user message with the system instruction.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.hasKey {
		return "", domain.ConfigurationError("Anthropic API key is empty")
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (string, error) {
		start := time.Now()
		msg, err := c.client.Messages.New(ctx, req)
		if err != nil {
			return "", classifyAnthropicError(err)
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			return "", domain.ExternalAPIError(0, "Anthropic API returned no text content", nil)
		}

		c.logger.Debug("anthropic completion received",
			zap.String("model", c.model),
			zap.Int64("input_tokens", msg.Usage.InputTokens),
			zap.Int64("output_tokens", msg.Usage.OutputTokens),
			zap.Duration("took", time.Since(start)),
		)

		return text, nil
	})
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError("Anthropic", apiErr.StatusCode, apiErr.RawJSON())
	}
	return domain.NetworkError(errors.Wrap(err, "anthropic request failed"), isTimeout(err))
}
