package backlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/pkg/metrics"
)

const (
	generatorName        = "StoryCrafter v2.0"
	sparseStoryThreshold = 20
)

// BacklogAssembler runs the full generation workflow: one planning call,
// then bounded-concurrency expansion of every epic, then dependency audit,
// quality scan, and metadata derivation. A failed expansion never aborts
// the run; the epic is kept with an empty story list and the backlog is
// marked partial.
type BacklogAssembler struct {
	planner  *EpicPlanner
	expander *StoryExpander

	concurrency      int
	dependencyPolicy config.DependencyPolicy
}

func NewBacklogAssembler(planner *EpicPlanner, expander *StoryExpander, concurrency int, policy config.DependencyPolicy) *BacklogAssembler {
	return &BacklogAssembler{
		planner:          planner,
		expander:         expander,
		concurrency:      concurrency,
		dependencyPolicy: policy,
	}
}

// Assemble produces a complete backlog from a formatted transcript context
// and the project echo. A planning failure is fatal; expansion failures
// degrade to a partial result.
func (a *BacklogAssembler) Assemble(ctx context.Context, contextBlob string, project entity.ProjectInfo) (*entity.Backlog, error) {
	epics, err := a.planner.Plan(ctx, contextBlob)
	if err != nil {
		return nil, err
	}

	a.expandAll(ctx, epics, contextBlob)

	backlog := &entity.Backlog{
		Project: project,
		Epics:   epics,
	}

	a.auditDependencies(ctx, backlog)
	a.scanQuality(ctx, backlog)
	a.deriveMetadata(backlog)

	if backlog.Metadata.TotalStories < sparseStoryThreshold {
		fields := []zap.Field{zap.Int("total_stories", backlog.Metadata.TotalStories)}
		for _, epic := range backlog.Epics {
			fields = append(fields, zap.Int(epic.ID, len(epic.Stories)))
		}
		ctxzap.Warn(ctx, "sparse backlog generated", fields...)
	}

	ctxzap.Info(ctx, "backlog assembled",
		zap.String("generation_id", backlog.Metadata.GenerationID),
		zap.Int("epics", backlog.Metadata.TotalEpics),
		zap.Int("stories", backlog.Metadata.TotalStories),
		zap.Bool("partial", backlog.Metadata.Partial))
	return backlog, nil
}

// expandAll runs story expansion for every epic with bounded concurrency.
// Failures are recorded on the epic itself; sibling expansions are never
// cancelled by one epic's failure.
func (a *BacklogAssembler) expandAll(ctx context.Context, epics []entity.Epic, contextBlob string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range epics {
		g.Go(func() error {
			stories, err := a.expander.Expand(gctx, epics[i], contextBlob)
			if err != nil {
				ctxzap.Error(gctx, "epic expansion failed",
					zap.String("epic_id", epics[i].ID), zap.Error(err))
				epics[i].Stories = []entity.Story{}
				epics[i].ExpansionError = err.Error()
				return nil
			}
			epics[i].Stories = stories
			return nil
		})
	}

	// Goroutines always return nil; errgroup is used for the limit and
	// the context plumbing only.
	_ = g.Wait()
}

// auditDependencies checks every story dependency against the ids produced
// in this run. Unknown references are either flagged in metadata or pruned,
// per policy. Never silent.
func (a *BacklogAssembler) auditDependencies(ctx context.Context, backlog *entity.Backlog) {
	known := make(map[string]struct{})
	for _, epic := range backlog.Epics {
		known[epic.ID] = struct{}{}
		for _, story := range epic.Stories {
			known[story.ID] = struct{}{}
		}
	}

	for ei := range backlog.Epics {
		for si := range backlog.Epics[ei].Stories {
			story := &backlog.Epics[ei].Stories[si]

			kept := story.Dependencies[:0]
			for _, ref := range story.Dependencies {
				if _, ok := known[ref]; ok {
					kept = append(kept, ref)
					continue
				}
				switch a.dependencyPolicy {
				case config.DependencyPolicyPrune:
					ctxzap.Warn(ctx, "pruning unresolved story dependency",
						zap.String("story_id", story.ID), zap.String("ref", ref))
				default:
					kept = append(kept, ref)
					backlog.Metadata.UnresolvedDependencies = append(
						backlog.Metadata.UnresolvedDependencies,
						fmt.Sprintf("%s -> %s", story.ID, ref))
				}
			}
			story.Dependencies = kept
		}
	}
}

// scanQuality scores every story and logs the warnings. Scoring never
// mutates or rejects a story; low quality is surfaced, not enforced.
func (a *BacklogAssembler) scanQuality(ctx context.Context, backlog *entity.Backlog) {
	for _, epic := range backlog.Epics {
		for _, story := range epic.Stories {
			report := ScoreStory(story)
			if !report.PassesMinimum {
				metrics.StoriesBelowMinimum.Inc()
			}
			for _, warning := range report.Warnings {
				ctxzap.Warn(ctx, "acceptance criteria quality warning",
					zap.String("story_id", story.ID),
					zap.Int("score", report.Score),
					zap.String("warning", warning))
			}
		}
	}
}

func (a *BacklogAssembler) deriveMetadata(backlog *entity.Backlog) {
	meta := &backlog.Metadata
	meta.TotalEpics = len(backlog.Epics)
	meta.TotalStories = 0
	meta.TotalEstimatedHours = 0

	for _, epic := range backlog.Epics {
		meta.TotalStories += len(epic.Stories)
		for _, story := range epic.Stories {
			meta.TotalEstimatedHours += story.EstimatedHours
		}
		if epic.ExpansionError != "" {
			meta.Partial = true
			meta.FailedEpics = append(meta.FailedEpics, epic.ID)
		}
	}

	meta.GeneratedAt = time.Now().UTC()
	meta.Generator = generatorName
	meta.GenerationID = uuid.NewString()
}
