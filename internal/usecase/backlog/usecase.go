// Package backlog implements the generation-and-validation pipeline that
// turns a consensus transcript into a typed project backlog.
package backlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/pkg/metrics"
)

// Usecase is the pipeline facade behind the HTTP, MCP, and CLI surfaces.
// It owns transcript formatting, the formatted-context cache, and the
// stage components; the surfaces only validate input and map errors.
type Usecase struct {
	planner   *EpicPlanner
	expander  *StoryExpander
	regen     *RegenerationEngine
	assembler *BacklogAssembler

	// contextCache memoizes formatted transcript blobs between the epic
	// and story phases of a two-phase flow. Keyed by content hash, so a
	// changed transcript never hits a stale entry.
	contextCache *gocache.Cache
}

func NewUsecase(cfg *config.Config, planning, expansion GenerativeBackend) *Usecase {
	pcfg := cfg.PlanningBackendCfg
	ecfg := cfg.ExpansionBackendCfg

	planner := NewEpicPlanner(planning,
		cfg.PipelineCfg.TargetEpicCountMin, cfg.PipelineCfg.TargetEpicCountMax,
		pcfg.MaxTokens, pcfg.Temperature)
	expander := NewStoryExpander(expansion, planning, ecfg.MaxTokens, ecfg.Temperature)

	return &Usecase{
		planner:      planner,
		expander:     expander,
		regen:        NewRegenerationEngine(planning, expansion, pcfg.MaxTokens, pcfg.Temperature),
		assembler:    NewBacklogAssembler(planner, expander, cfg.PipelineCfg.ExpansionConcurrency, cfg.PipelineCfg.DependencyPolicy),
		contextCache: gocache.New(cfg.PipelineCfg.ContextCacheTTL, 2*cfg.PipelineCfg.ContextCacheTTL),
	}
}

// GenerateEpics produces the epic structure only. First phase of the
// two-phase flow; the formatted context is cached for the story phase.
func (u *Usecase) GenerateEpics(ctx context.Context, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (epics []entity.Epic, err error) {
	defer u.observe("generate_epics", time.Now(), &err)

	blob, err := u.contextFor(messages, meta)
	if err != nil {
		return nil, err
	}
	return u.planner.Plan(ctx, blob)
}

// GenerateStories expands one epic into stories. Second phase of the
// two-phase flow; the caller re-supplies the full transcript.
func (u *Usecase) GenerateStories(ctx context.Context, epic entity.Epic, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (stories []entity.Story, err error) {
	defer u.observe("generate_stories", time.Now(), &err)

	blob, err := u.contextFor(messages, meta)
	if err != nil {
		return nil, err
	}
	return u.expander.Expand(ctx, epic, blob)
}

// GenerateBacklog runs the full workflow: plan, expand all epics with
// bounded concurrency, audit, and stamp metadata.
func (u *Usecase) GenerateBacklog(ctx context.Context, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (backlog *entity.Backlog, err error) {
	defer u.observe("generate_backlog", time.Now(), &err)

	blob, err := u.contextFor(messages, meta)
	if err != nil {
		return nil, err
	}

	project := ExtractRequirements(messages, meta).ProjectInfo()
	return u.assembler.Assemble(ctx, blob, project)
}

// RegenerateEpic revises an existing epic against user feedback.
func (u *Usecase) RegenerateEpic(ctx context.Context, epic entity.Epic, feedback string, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (revised entity.Epic, err error) {
	defer u.observe("regenerate_epic", time.Now(), &err)

	blob, err := u.contextFor(messages, meta)
	if err != nil {
		return entity.Epic{}, err
	}
	return u.regen.RegenerateEpic(ctx, epic, feedback, blob)
}

// RegenerateStory revises an existing story against user feedback.
func (u *Usecase) RegenerateStory(ctx context.Context, epic entity.Epic, story entity.Story, feedback string, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (revised entity.Story, err error) {
	defer u.observe("regenerate_story", time.Now(), &err)

	blob, err := u.contextFor(messages, meta)
	if err != nil {
		return entity.Story{}, err
	}
	return u.regen.RegenerateStory(ctx, epic, story, feedback, blob)
}

// contextFor returns the formatted transcript context, memoized by content
// hash. Formatting is deterministic, so a hash hit is always safe.
func (u *Usecase) contextFor(messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (string, error) {
	key, ok := contextKey(messages, meta)
	if ok {
		if cached, found := u.contextCache.Get(key); found {
			return cached.(string), nil
		}
	}

	blob, err := FormatTranscript(messages, meta)
	if err != nil {
		return "", err
	}
	if ok {
		u.contextCache.SetDefault(key, blob)
	}
	return blob, nil
}

func contextKey(messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (string, bool) {
	payload, err := json.Marshal(struct {
		Messages []entity.ConsensusMessage `json:"messages"`
		Meta     *entity.ProjectMetadata   `json:"meta"`
	}{messages, meta})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), true
}

// observe records the operation counter and duration histogram. The error
// pointer is read at defer time so named returns are captured.
func (u *Usecase) observe(operation string, start time.Time, err *error) {
	outcome := metrics.OutcomeOK
	if *err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.Generations.WithLabelValues(operation, outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
