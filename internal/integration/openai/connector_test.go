package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/integration/common"
	pkgRetry "github.com/vishkar/storycrafter/internal/pkg/retry"
)

func testConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			BaseURL:        baseURL,
			RequestTimeout: 5 * time.Second,
		},
		APIKey:      "test-key",
		Model:       "gpt-test",
		MaxTokens:   8192,
		Temperature: 0.5,
		Retry: pkgRetry.RetryConfig{
			Attempts: 1,
			Delay:    time.Millisecond,
			MaxDelay: time.Millisecond,
		},
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, completionsEndpoint, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": "the stories"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	text, err := c.Complete(context.Background(), "the prompt", 2048, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "the stories", text)

	assert.Equal(t, "gpt-test", gotReq.Model)
	assert.Equal(t, 2048, gotReq.MaxCompletionTokens)
	assert.Equal(t, 0.9, gotReq.Temperature)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "the prompt", gotReq.Messages[0].Content)
}

func TestCompleteEmptyChoicesUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), "p", 0, 0.5)

	var unavailable *entity.BackendUnavailableError
	require.ErrorAs(t, err, &unavailable, "an empty completion is a backend failure, not an internal one")
	assert.Equal(t, backendName, unavailable.Backend)
	assert.ErrorIs(t, err, common.ErrEmptyCompletion)
}

func TestCompleteBlankMessageUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": ""}},
			},
		})
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), "p", 0, 0.5)

	var unavailable *entity.BackendUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestCompleteRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "content policy"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), "p", 0, 0.5)

	var rejected *entity.BackendRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, backendName, rejected.Backend)
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
}

func TestCompleteServerErrorUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewConnector(testConfig(server.URL), zap.NewNop())

	_, err := c.Complete(context.Background(), "p", 0, 0.5)

	var unavailable *entity.BackendUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}
