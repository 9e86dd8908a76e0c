package backlog

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
)

const fallbackRegenerationNote = "Regenerated based on user feedback"

// RegenerationEngine produces improved versions of existing epics and
// stories from user feedback. Identity is preserved unconditionally: the
// returned record always carries the original id regardless of what the
// backend emitted.
type RegenerationEngine struct {
	planning  GenerativeBackend
	expansion GenerativeBackend

	maxTokens   int
	temperature float64
}

func NewRegenerationEngine(planning, expansion GenerativeBackend, maxTokens int, temperature float64) *RegenerationEngine {
	return &RegenerationEngine{
		planning:    planning,
		expansion:   expansion,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// RegenerateEpic revises an epic against feedback. The original story list
// is carried over untouched; regeneration changes the epic's framing, not
// its children.
func (r *RegenerationEngine) RegenerateEpic(ctx context.Context, epic entity.Epic, feedback, contextBlob string) (entity.Epic, error) {
	prompt := epicRegenerationPrompt(epic, feedback, contextBlob)

	raw, err := r.planning.Complete(ctx, prompt, r.maxTokens, r.temperature)
	if err != nil {
		return entity.Epic{}, &entity.GenerationFailedError{Stage: "epic regeneration", Err: err}
	}

	revised, err := extractEpic(ctx, raw)
	if err != nil {
		return entity.Epic{}, &entity.GenerationFailedError{Stage: "epic regeneration", Err: err}
	}

	revised.ID = epic.ID
	revised.Stories = epic.Stories
	if revised.RegenerationNotes == "" {
		revised.RegenerationNotes = fallbackRegenerationNote
	}

	ctxzap.Info(ctx, "epic regenerated", zap.String("epic_id", epic.ID))
	return revised, nil
}

// RegenerateStory revises a story against feedback within its parent epic.
func (r *RegenerationEngine) RegenerateStory(ctx context.Context, epic entity.Epic, story entity.Story, feedback, contextBlob string) (entity.Story, error) {
	prompt := storyRegenerationPrompt(epic, story, feedback, contextBlob)

	raw, err := r.expansion.Complete(ctx, prompt, r.maxTokens, r.temperature)
	if err != nil && backendFault(err) {
		ctxzap.Warn(ctx, "expansion backend failed during regeneration, substituting fallback",
			zap.String("story_id", story.ID), zap.Error(err))
		raw, err = r.planning.Complete(ctx, prompt, r.maxTokens, r.temperature)
	}
	if err != nil {
		return entity.Story{}, &entity.GenerationFailedError{Stage: "story regeneration", Err: err}
	}

	revised, err := extractStory(ctx, raw)
	if err != nil {
		return entity.Story{}, &entity.GenerationFailedError{Stage: "story regeneration", Err: err}
	}

	revised.ID = story.ID
	if revised.RegenerationNotes == "" {
		revised.RegenerationNotes = fallbackRegenerationNote
	}

	ctxzap.Info(ctx, "story regenerated", zap.String("story_id", story.ID))
	return revised, nil
}
