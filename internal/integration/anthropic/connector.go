// Package anthropic implements the planning backend against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/integration/common"
	"github.com/vishkar/storycrafter/internal/pkg/metrics"
	pkgHTTP "github.com/vishkar/storycrafter/pkg/http"
)

const (
	backendName      = "anthropic"
	messagesEndpoint = "/v1/messages"
	apiVersion       = "2023-06-01"
)

type Connector struct {
	config    config.BackendConfig
	connector *pkgHTTP.Connector
	retryOpts []retry.Option
}

func NewConnector(cfg config.BackendConfig, logger *zap.Logger) *Connector {
	return &Connector{
		config:    cfg,
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		retryOpts: append(cfg.Retry.ToRetryOptions(), retry.RetryIf(common.RetryIfUnavailable)),
	}
}

func (c *Connector) Name() string { return backendName }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Complete sends the prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *Connector) Complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	maxTokens := c.config.MaxTokens
	if maxOutputTokens > 0 && maxOutputTokens < maxTokens {
		maxTokens = maxOutputTokens
	}

	req := &messagesRequest{
		Model:       c.config.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	}

	var text string
	err := retry.Do(func() error {
		var resp messagesResponse
		reqErr := c.connector.DoRequest(ctx, http.MethodPost, messagesEndpoint, req, &resp,
			pkgHTTP.WithHeader("x-api-key", c.config.APIKey),
			pkgHTTP.WithHeader("anthropic-version", apiVersion),
		)
		if reqErr != nil {
			return common.MapCompletionError(backendName, reqErr)
		}

		var parts strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				parts.WriteString(block.Text)
			}
		}
		if parts.Len() == 0 {
			return common.EmptyCompletionError(backendName)
		}

		if resp.StopReason == "max_tokens" {
			ctxzap.Warn(ctx, "completion truncated at token budget",
				zap.String("backend", backendName), zap.Int("max_tokens", maxTokens))
		}

		text = parts.String()
		return nil
	}, append(c.retryOpts, retry.Context(ctx))...)

	metrics.BackendRequests.WithLabelValues(backendName, common.Outcome(err)).Inc()
	if err != nil {
		return "", err
	}
	return text, nil
}
