package backlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishkar/storycrafter/internal/entity"
)

func TestFormatTranscriptEmpty(t *testing.T) {
	_, err := FormatTranscript(nil, nil)
	assert.True(t, errors.Is(err, entity.ErrEmptyTranscript))

	_, err = FormatTranscript([]entity.ConsensusMessage{}, &entity.ProjectMetadata{ProjectName: "X"})
	assert.True(t, errors.Is(err, entity.ErrEmptyTranscript))
}

func TestFormatTranscriptDeterministic(t *testing.T) {
	messages := []entity.ConsensusMessage{
		{Role: entity.RoleSystem, Content: "Project: Fitness tracker"},
		{Role: entity.RoleAlex, Content: "MVP features: workout logging"},
		{Role: entity.RoleBlake, Content: "Backend: Go with Postgres"},
		{Role: entity.RoleCasey, Content: "Timeline is 8 weeks with 3 developers"},
	}
	meta := &entity.ProjectMetadata{ProjectName: "Fitness Tracker", Platform: "mobile"}

	first, err := FormatTranscript(messages, meta)
	require.NoError(t, err)
	second, err := FormatTranscript(messages, meta)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatTranscriptMessageOrderAndRoles(t *testing.T) {
	messages := []entity.ConsensusMessage{
		{Role: entity.RoleAlex, Content: "first"},
		{Role: entity.RoleBlake, Content: "second"},
		{Role: entity.RoleAlex, Content: "third"},
	}

	blob, err := FormatTranscript(messages, nil)
	require.NoError(t, err)

	assert.Contains(t, blob, "alex: first\n")
	assert.Contains(t, blob, "blake: second\n")
	assert.Contains(t, blob, "alex: third\n")
	assert.Less(t, strings.Index(blob, "first"), strings.Index(blob, "second"))
	assert.Less(t, strings.Index(blob, "second"), strings.Index(blob, "third"))
}

func TestFormatTranscriptMetadataFieldOrder(t *testing.T) {
	messages := []entity.ConsensusMessage{{Role: entity.RoleSystem, Content: "hello"}}
	meta := &entity.ProjectMetadata{
		TeamSize:    "3 developers",
		ProjectName: "Tracker",
		Timeline:    "8 weeks",
	}

	blob, err := FormatTranscript(messages, meta)
	require.NoError(t, err)

	assert.Contains(t, blob, "### PROJECT OVERVIEW")
	assert.Less(t, strings.Index(blob, "Name: Tracker"), strings.Index(blob, "Timeline: 8 weeks"))
	assert.Less(t, strings.Index(blob, "Timeline: 8 weeks"), strings.Index(blob, "Team Size: 3 developers"))
	// Absent fields never appear.
	assert.NotContains(t, blob, "Platform:")
	assert.NotContains(t, blob, "Target Users:")
}

func TestFormatTranscriptNoMetadataSection(t *testing.T) {
	messages := []entity.ConsensusMessage{{Role: entity.RoleAlex, Content: "hello"}}

	blob, err := FormatTranscript(messages, nil)
	require.NoError(t, err)
	assert.NotContains(t, blob, "### PROJECT OVERVIEW")
	assert.Contains(t, blob, "### CONSENSUS DISCUSSION")

	// Empty metadata struct behaves like nil.
	blob2, err := FormatTranscript(messages, &entity.ProjectMetadata{})
	require.NoError(t, err)
	assert.Equal(t, blob, blob2)
}
