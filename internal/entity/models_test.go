package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValidate(t *testing.T) {
	for _, role := range []Role{RoleSystem, RoleAlex, RoleBlake, RoleCasey} {
		assert.NoError(t, role.Validate())
	}

	err := Role("moderator").Validate()
	require.ErrorIs(t, err, ErrInvalidRole)
	assert.Contains(t, err.Error(), "moderator")

	assert.ErrorIs(t, Role("").Validate(), ErrInvalidRole)
	assert.ErrorIs(t, Role("Alex").Validate(), ErrInvalidRole, "roles are case sensitive")
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, EpicPriorityHigh.Valid())
	assert.False(t, EpicPriority("Urgent").Valid())
	assert.False(t, EpicPriority("").Valid())

	assert.True(t, CategoryPostMVP.Valid())
	assert.False(t, EpicCategory("Backlog").Valid())

	assert.True(t, StoryPriorityP3.Valid())
	assert.False(t, StoryPriority("critical").Valid())

	assert.True(t, LayerInfrastructure.Valid())
	assert.False(t, Layer("middleware").Valid())
}

func TestValidStoryPointValue(t *testing.T) {
	for _, p := range []int{0, 2, 3, 5, 8, 13} {
		assert.True(t, ValidStoryPointValue(p), "point value %d", p)
	}
	for _, p := range []int{1, 4, 7, 21, -3} {
		assert.False(t, ValidStoryPointValue(p), "point value %d", p)
	}
}

func TestGenerationFailedErrorUnwraps(t *testing.T) {
	cause := &BackendUnavailableError{Backend: "anthropic", Timeout: true, Err: errors.New("deadline exceeded")}
	wrapped := &GenerationFailedError{Stage: "epic", Err: cause}

	var unavailable *BackendUnavailableError
	require.ErrorAs(t, wrapped, &unavailable)
	assert.Equal(t, "anthropic", unavailable.Backend)
	assert.Contains(t, wrapped.Error(), "epic generation failed")
	assert.Contains(t, cause.Error(), "timeout")
}

func TestPayloadShapeList(t *testing.T) {
	assert.True(t, ShapeEpicList.List())
	assert.True(t, ShapeStoryList.List())
	assert.False(t, ShapeEpic.List())
	assert.False(t, ShapeStory.List())
}
