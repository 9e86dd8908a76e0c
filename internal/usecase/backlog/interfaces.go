package backlog

import "context"

// GenerativeBackend is the capability the pipeline uses to obtain raw
// completions. Two variants are wired at build time: a planning backend
// for epic structure and an expansion backend for stories. Implementations
// fail with *entity.BackendUnavailableError or *entity.BackendRejectedError
// so callers can pick a retry or fallback policy.
type GenerativeBackend interface {
	// Name identifies the backend in logs and error values.
	Name() string

	// Complete sends the prompt and returns the raw response text.
	// maxOutputTokens is a per-call budget; implementations cap it at
	// their configured ceiling.
	Complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error)
}
