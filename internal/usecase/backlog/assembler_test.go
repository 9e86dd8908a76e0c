package backlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/entity"
)

const singleEpicJSON = `[{"title": "Authentication", "description": "Login.", "priority": "High", "category": "MVP", "story_count_target": 2}]`

const dependentStoriesJSON = `[
  {"title": "User Login", "description": "As a user, I want to log in.", "priority": "P0", "story_points": 5, "estimated_hours": 10,
   "acceptance_criteria": ["given a when b then c", "verify input", "edge case: lockout", "non-functional: latency"]},
  {"title": "Password Reset", "description": "As a user, I want to reset my password.", "priority": "P1", "story_points": 3, "estimated_hours": 6,
   "dependencies": ["EPIC-1-1", "MISSING-9"],
   "acceptance_criteria": ["given a when b then c", "verify token", "edge case: expired link", "security: single use"]}
]`

func newAssembler(planning, expansion *stubBackend, policy config.DependencyPolicy) *BacklogAssembler {
	planner := NewEpicPlanner(planning, 1, 8, 8192, 0.5)
	expander := NewStoryExpander(expansion, nil, 8192, 0.5)
	return NewBacklogAssembler(planner, expander, 1, policy)
}

func TestAssembleCompleteBacklog(t *testing.T) {
	planning := &stubBackend{name: "planning", responses: []string{epicListJSON}}
	expansion := &stubBackend{name: "expansion", responses: []string{storyListJSON}}
	assembler := newAssembler(planning, expansion, config.DependencyPolicyFlag)

	project := entity.ProjectInfo{Name: "Tracker"}
	backlog, err := assembler.Assemble(context.Background(), "context", project)
	require.NoError(t, err)

	assert.Equal(t, project, backlog.Project)
	require.Len(t, backlog.Epics, 2)
	assert.Equal(t, "EPIC-1", backlog.Epics[0].ID)
	assert.Equal(t, "EPIC-2", backlog.Epics[1].ID)
	assert.Equal(t, []string{"EPIC-1-1", "EPIC-1-2"}, storyIDs(backlog.Epics[0]))
	assert.Equal(t, []string{"EPIC-2-1", "EPIC-2-2"}, storyIDs(backlog.Epics[1]))

	meta := backlog.Metadata
	assert.Equal(t, 2, meta.TotalEpics)
	assert.Equal(t, 4, meta.TotalStories)
	assert.Equal(t, 28, meta.TotalEstimatedHours)
	assert.False(t, meta.Partial)
	assert.Empty(t, meta.FailedEpics)
	assert.Equal(t, generatorName, meta.Generator)
	assert.NotEmpty(t, meta.GenerationID)
	assert.False(t, meta.GeneratedAt.IsZero())
}

func TestAssemblePartialOnExpansionFailure(t *testing.T) {
	planning := &stubBackend{name: "planning", responses: []string{epicListJSON}}
	expansion := &stubBackend{
		name:      "expansion",
		errs:      []error{&entity.BackendUnavailableError{Backend: "expansion", Timeout: true}},
		responses: []string{storyListJSON},
	}
	assembler := newAssembler(planning, expansion, config.DependencyPolicyFlag)

	backlog, err := assembler.Assemble(context.Background(), "context", entity.ProjectInfo{})
	require.NoError(t, err, "one failed expansion never fails the run")

	require.Len(t, backlog.Epics, 2)
	failed := backlog.Epics[0]
	assert.Empty(t, failed.Stories)
	assert.NotEmpty(t, failed.ExpansionError)

	survived := backlog.Epics[1]
	assert.Len(t, survived.Stories, 2)

	assert.True(t, backlog.Metadata.Partial)
	assert.Equal(t, []string{"EPIC-1"}, backlog.Metadata.FailedEpics)
	assert.Equal(t, 2, backlog.Metadata.TotalStories)
}

func TestAssemblePlanningFailureIsFatal(t *testing.T) {
	planning := &stubBackend{errs: []error{&entity.BackendRejectedError{Backend: "planning", StatusCode: 429}}}
	assembler := newAssembler(planning, &stubBackend{}, config.DependencyPolicyFlag)

	_, err := assembler.Assemble(context.Background(), "context", entity.ProjectInfo{})

	var genErr *entity.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "epic", genErr.Stage)
}

func TestAssembleFlagsUnresolvedDependencies(t *testing.T) {
	planning := &stubBackend{responses: []string{singleEpicJSON}}
	expansion := &stubBackend{responses: []string{dependentStoriesJSON}}
	assembler := newAssembler(planning, expansion, config.DependencyPolicyFlag)

	backlog, err := assembler.Assemble(context.Background(), "context", entity.ProjectInfo{})
	require.NoError(t, err)

	story := backlog.Epics[0].Stories[1]
	assert.Equal(t, []string{"EPIC-1-1", "MISSING-9"}, story.Dependencies, "flag policy keeps the reference")
	assert.Equal(t, []string{"EPIC-1-2 -> MISSING-9"}, backlog.Metadata.UnresolvedDependencies)
}

func TestAssemblePrunesUnresolvedDependencies(t *testing.T) {
	planning := &stubBackend{responses: []string{singleEpicJSON}}
	expansion := &stubBackend{responses: []string{dependentStoriesJSON}}
	assembler := newAssembler(planning, expansion, config.DependencyPolicyPrune)

	backlog, err := assembler.Assemble(context.Background(), "context", entity.ProjectInfo{})
	require.NoError(t, err)

	story := backlog.Epics[0].Stories[1]
	assert.Equal(t, []string{"EPIC-1-1"}, story.Dependencies, "resolvable references survive pruning")
	assert.Empty(t, backlog.Metadata.UnresolvedDependencies)
}

func storyIDs(epic entity.Epic) []string {
	ids := make([]string, 0, len(epic.Stories))
	for _, story := range epic.Stories {
		ids = append(ids, story.ID)
	}
	return ids
}
