package backlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishkar/storycrafter/internal/entity"
)

func testEpic() entity.Epic {
	return entity.Epic{
		ID:               "EPIC-3",
		Title:            "Authentication",
		Description:      "Login and registration.",
		Priority:         entity.EpicPriorityHigh,
		Category:         entity.CategoryMVP,
		StoryCountTarget: 2,
	}
}

func TestExpanderAssignsStoryIDs(t *testing.T) {
	primary := &stubBackend{name: "expansion", responses: []string{storyListJSON}}
	expander := NewStoryExpander(primary, nil, 8192, 0.5)

	stories, err := expander.Expand(context.Background(), testEpic(), "context")
	require.NoError(t, err)
	require.Len(t, stories, 2)

	assert.Equal(t, "EPIC-3-1", stories[0].ID)
	assert.Equal(t, "EPIC-3-2", stories[1].ID)
}

func TestExpanderFallbackOnUnavailable(t *testing.T) {
	primary := &stubBackend{
		name: "expansion",
		errs: []error{&entity.BackendUnavailableError{Backend: "expansion"}},
	}
	fallback := &stubBackend{name: "planning", responses: []string{storyListJSON}}
	expander := NewStoryExpander(primary, fallback, 8192, 0.5)

	stories, err := expander.Expand(context.Background(), testEpic(), "context")
	require.NoError(t, err)
	assert.Len(t, stories, 2)
	assert.Equal(t, 1, fallback.callCount())
}

func TestExpanderFallbackOnRejected(t *testing.T) {
	primary := &stubBackend{
		name: "expansion",
		errs: []error{&entity.BackendRejectedError{Backend: "expansion", StatusCode: 429}},
	}
	fallback := &stubBackend{name: "planning", responses: []string{storyListJSON}}
	expander := NewStoryExpander(primary, fallback, 8192, 0.5)

	_, err := expander.Expand(context.Background(), testEpic(), "context")
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.callCount())
}

func TestExpanderNoFallbackOnParseFailure(t *testing.T) {
	primary := &stubBackend{name: "expansion", responses: []string{"not json at all"}}
	fallback := &stubBackend{name: "planning", responses: []string{storyListJSON}}
	expander := NewStoryExpander(primary, fallback, 8192, 0.5)

	_, err := expander.Expand(context.Background(), testEpic(), "context")
	require.Error(t, err)
	assert.Equal(t, 0, fallback.callCount(), "parse failures are not a backend fault")
}

func TestExpanderFallbackAlsoFails(t *testing.T) {
	primary := &stubBackend{errs: []error{&entity.BackendUnavailableError{Backend: "expansion"}}}
	fallback := &stubBackend{errs: []error{&entity.BackendUnavailableError{Backend: "planning"}}}
	expander := NewStoryExpander(primary, fallback, 8192, 0.5)

	_, err := expander.Expand(context.Background(), testEpic(), "context")

	var genErr *entity.GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "story", genErr.Stage)
}

func TestExpanderPromptUsesTarget(t *testing.T) {
	primary := &stubBackend{responses: []string{storyListJSON}}
	expander := NewStoryExpander(primary, nil, 8192, 0.5)

	_, err := expander.Expand(context.Background(), testEpic(), "context")
	require.NoError(t, err)
	assert.Contains(t, primary.prompts[0], "Generate 2 DETAILED USER STORIES")

	// Zero target falls back to the default.
	epic := testEpic()
	epic.StoryCountTarget = 0
	_, err = expander.Expand(context.Background(), epic, "context")
	require.NoError(t, err)
	assert.Contains(t, primary.prompts[1], "Generate 4 DETAILED USER STORIES")
}
