// Package openai implements the expansion backend against the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/integration/common"
	"github.com/vishkar/storycrafter/internal/pkg/metrics"
	pkgHTTP "github.com/vishkar/storycrafter/pkg/http"
)

const (
	backendName         = "openai"
	completionsEndpoint = "/v1/chat/completions"
)

type Connector struct {
	config    config.BackendConfig
	connector *pkgHTTP.Connector
	retryOpts []retry.Option
}

func NewConnector(cfg config.BackendConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkgHTTP.WithBearerToken(cfg.APIKey)),
		retryOpts: append(cfg.Retry.ToRetryOptions(), retry.RetryIf(common.RetryIfUnavailable)),
	}
}

func (c *Connector) Name() string { return backendName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	Temperature         float64       `json:"temperature"`
	Messages            []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Complete sends the prompt as a single user message and returns the first
// choice's content.
func (c *Connector) Complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	maxTokens := c.config.MaxTokens
	if maxOutputTokens > 0 && maxOutputTokens < maxTokens {
		maxTokens = maxOutputTokens
	}

	req := &chatRequest{
		Model:               c.config.Model,
		MaxCompletionTokens: maxTokens,
		Temperature:         temperature,
		Messages:            []chatMessage{{Role: "user", Content: prompt}},
	}

	var text string
	err := retry.Do(func() error {
		var resp chatResponse
		reqErr := c.connector.DoRequest(ctx, http.MethodPost, completionsEndpoint, req, &resp)
		if reqErr != nil {
			return common.MapCompletionError(backendName, reqErr)
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return common.EmptyCompletionError(backendName)
		}

		if resp.Choices[0].FinishReason == "length" {
			ctxzap.Warn(ctx, "completion truncated at token budget",
				zap.String("backend", backendName), zap.Int("max_tokens", maxTokens))
		}

		text = resp.Choices[0].Message.Content
		return nil
	}, append(c.retryOpts, retry.Context(ctx))...)

	metrics.BackendRequests.WithLabelValues(backendName, common.Outcome(err)).Inc()
	if err != nil {
		return "", err
	}
	return text, nil
}
