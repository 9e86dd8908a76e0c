package backlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
)

// StoryExpander turns one epic plus the full transcript context into that
// epic's stories. When the expansion backend is unreachable or refuses the
// request, the planning backend substitutes for one attempt; parse
// failures are not retried on the fallback because a second backend will
// not fix a malformed epic.
type StoryExpander struct {
	primary  GenerativeBackend
	fallback GenerativeBackend

	maxTokens   int
	temperature float64
}

func NewStoryExpander(primary, fallback GenerativeBackend, maxTokens int, temperature float64) *StoryExpander {
	return &StoryExpander{
		primary:     primary,
		fallback:    fallback,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Expand generates the stories for epic. Story ids are assigned here as
// "<epic.id>-<n>", 1-based in generation order.
func (e *StoryExpander) Expand(ctx context.Context, epic entity.Epic, contextBlob string) ([]entity.Story, error) {
	prompt := storyExpansionPrompt(epic, contextBlob)

	raw, err := e.primary.Complete(ctx, prompt, e.maxTokens, e.temperature)
	if err != nil && e.fallback != nil && backendFault(err) {
		ctxzap.Warn(ctx, "expansion backend failed, substituting fallback",
			zap.String("epic_id", epic.ID),
			zap.String("backend", e.primary.Name()),
			zap.String("fallback", e.fallback.Name()),
			zap.Error(err))
		raw, err = e.fallback.Complete(ctx, prompt, e.maxTokens, e.temperature)
	}
	if err != nil {
		return nil, &entity.GenerationFailedError{Stage: "story", Err: err}
	}

	stories, err := extractStories(ctx, raw)
	if err != nil {
		return nil, &entity.GenerationFailedError{Stage: "story", Err: err}
	}

	for i := range stories {
		stories[i].ID = fmt.Sprintf("%s-%d", epic.ID, i+1)
	}

	ctxzap.Debug(ctx, "epic expanded",
		zap.String("epic_id", epic.ID), zap.Int("stories", len(stories)))
	return stories, nil
}

// backendFault reports whether the error is a backend availability or
// rejection failure, the two classes a fallback backend can compensate.
func backendFault(err error) bool {
	var unavailable *entity.BackendUnavailableError
	var rejected *entity.BackendRejectedError
	return errors.As(err, &unavailable) || errors.As(err, &rejected)
}
