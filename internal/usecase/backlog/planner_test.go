package backlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishkar/storycrafter/internal/entity"
)

func TestPlannerAssignsSequentialIDs(t *testing.T) {
	backend := &stubBackend{responses: []string{epicListJSON}}
	planner := NewEpicPlanner(backend, 6, 8, 8192, 0.5)

	epics, err := planner.Plan(context.Background(), "context")
	require.NoError(t, err)
	require.Len(t, epics, 2)

	assert.Equal(t, "EPIC-1", epics[0].ID)
	assert.Equal(t, "EPIC-2", epics[1].ID)
}

func TestPlannerOverridesBackendIDs(t *testing.T) {
	raw := `[{"id": "made-up-7", "title": "First", "description": "One."}, {"id": "whatever", "title": "Second", "description": "Two."}]`
	backend := &stubBackend{responses: []string{raw}}
	planner := NewEpicPlanner(backend, 6, 8, 8192, 0.5)

	epics, err := planner.Plan(context.Background(), "context")
	require.NoError(t, err)
	assert.Equal(t, "EPIC-1", epics[0].ID)
	assert.Equal(t, "EPIC-2", epics[1].ID)
}

func TestPlannerPromptCarriesRange(t *testing.T) {
	backend := &stubBackend{responses: []string{epicListJSON}}
	planner := NewEpicPlanner(backend, 6, 8, 8192, 0.5)

	_, err := planner.Plan(context.Background(), "the transcript blob")
	require.NoError(t, err)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "6-8")
	assert.Contains(t, backend.prompts[0], "the transcript blob")
}

func TestPlannerBackendFailure(t *testing.T) {
	backend := &stubBackend{errs: []error{&entity.BackendUnavailableError{Backend: "stub", Timeout: true}}}
	planner := NewEpicPlanner(backend, 6, 8, 8192, 0.5)

	_, err := planner.Plan(context.Background(), "context")

	var genErr *entity.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "epic", genErr.Stage)

	var unavailable *entity.BackendUnavailableError
	assert.ErrorAs(t, err, &unavailable, "the cause stays reachable through the wrapper")
}

func TestPlannerUnparsableResponse(t *testing.T) {
	backend := &stubBackend{responses: []string{"I could not produce JSON this time, sorry."}}
	planner := NewEpicPlanner(backend, 6, 8, 8192, 0.5)

	_, err := planner.Plan(context.Background(), "context")

	var unparsable *entity.UnparsableResponseError
	require.ErrorAs(t, err, &unparsable)
	assert.Equal(t, entity.ShapeEpicList, unparsable.ExpectedShape)
}
