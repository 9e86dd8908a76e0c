package backlog

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
)

// EpicPlanner turns a formatted transcript context into the epic structure
// of the backlog. Epic ids are assigned here, in generation order, and are
// never reassigned afterwards.
type EpicPlanner struct {
	backend  GenerativeBackend
	minEpics int
	maxEpics int

	maxTokens   int
	temperature float64
}

func NewEpicPlanner(backend GenerativeBackend, minEpics, maxEpics, maxTokens int, temperature float64) *EpicPlanner {
	return &EpicPlanner{
		backend:     backend,
		minEpics:    minEpics,
		maxEpics:    maxEpics,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Plan requests the epic structure from the planning backend. Any id a
// backend emits is discarded in favor of the positional "EPIC-<n>" id.
func (p *EpicPlanner) Plan(ctx context.Context, contextBlob string) ([]entity.Epic, error) {
	prompt := epicPlanPrompt(contextBlob, p.minEpics, p.maxEpics)

	ctxzap.Debug(ctx, "requesting epic plan",
		zap.String("backend", p.backend.Name()),
		zap.Int("min_epics", p.minEpics),
		zap.Int("max_epics", p.maxEpics))

	raw, err := p.backend.Complete(ctx, prompt, p.maxTokens, p.temperature)
	if err != nil {
		return nil, &entity.GenerationFailedError{Stage: "epic", Err: err}
	}

	epics, err := extractEpics(ctx, raw)
	if err != nil {
		return nil, &entity.GenerationFailedError{Stage: "epic", Err: err}
	}

	for i := range epics {
		epics[i].ID = fmt.Sprintf("EPIC-%d", i+1)
	}

	ctxzap.Info(ctx, "epic plan generated", zap.Int("epics", len(epics)))
	return epics, nil
}
