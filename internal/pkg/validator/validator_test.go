package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishkar/storycrafter/internal/entity"
)

func validMessages() []entity.ConsensusMessage {
	return []entity.ConsensusMessage{
		{Role: entity.RoleSystem, Content: "Project: Tracker"},
		{Role: entity.RoleAlex, Content: "Features: logging"},
		{Role: entity.RoleBlake, Content: "Backend: Go"},
		{Role: entity.RoleCasey, Content: "Timeline: 8 weeks"},
	}
}

func TestValidateGenerateBacklog(t *testing.T) {
	v := New()

	err := v.ValidateGenerateBacklog(&entity.GenerateBacklogRequest{ConsensusMessages: validMessages()})
	assert.NoError(t, err)

	err = v.ValidateGenerateBacklog(&entity.GenerateBacklogRequest{})
	assert.ErrorIs(t, err, entity.ErrEmptyTranscript)
}

func TestValidateTranscriptRejectsUnknownRole(t *testing.T) {
	v := New()
	req := &entity.GenerateEpicsRequest{
		ConsensusMessages: []entity.ConsensusMessage{
			{Role: entity.RoleAlex, Content: "fine"},
			{Role: "moderator", Content: "not a known role"},
		},
	}

	err := v.ValidateGenerateEpics(req)
	require.ErrorIs(t, err, entity.ErrInvalidRole)
	assert.Contains(t, err.Error(), "consensus_messages[1]")
	assert.Contains(t, err.Error(), "moderator")
}

func TestValidateTranscriptRejectsEmptyContent(t *testing.T) {
	v := New()
	req := &entity.GenerateEpicsRequest{
		ConsensusMessages: []entity.ConsensusMessage{
			{Role: entity.RoleAlex, Content: ""},
		},
	}

	err := v.ValidateGenerateEpics(req)
	require.ErrorIs(t, err, entity.ErrMissingField)
	assert.Contains(t, err.Error(), "consensus_messages[0].content")
}

func TestValidateGenerateStories(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     entity.GenerateStoriesRequest
		wantErr error
	}{
		{
			name: "valid",
			req: entity.GenerateStoriesRequest{
				Epic:              entity.Epic{ID: "EPIC-1", Title: "Auth"},
				ConsensusMessages: validMessages(),
			},
		},
		{
			name: "missing epic id",
			req: entity.GenerateStoriesRequest{
				Epic:              entity.Epic{Title: "Auth"},
				ConsensusMessages: validMessages(),
			},
			wantErr: entity.ErrMissingField,
		},
		{
			name: "missing epic title",
			req: entity.GenerateStoriesRequest{
				Epic:              entity.Epic{ID: "EPIC-1"},
				ConsensusMessages: validMessages(),
			},
			wantErr: entity.ErrMissingField,
		},
		{
			name: "empty transcript",
			req: entity.GenerateStoriesRequest{
				Epic: entity.Epic{ID: "EPIC-1", Title: "Auth"},
			},
			wantErr: entity.ErrEmptyTranscript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateGenerateStories(&tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRegenerateEpicRequiresFeedback(t *testing.T) {
	v := New()
	req := &entity.RegenerateEpicRequest{
		Epic:              entity.Epic{ID: "EPIC-1", Title: "Auth"},
		ConsensusMessages: validMessages(),
	}

	err := v.ValidateRegenerateEpic(req)
	require.ErrorIs(t, err, entity.ErrMissingField)
	assert.Contains(t, err.Error(), "user_feedback")

	req.UserFeedback = "tighten the scope"
	assert.NoError(t, v.ValidateRegenerateEpic(req))
}

func TestValidateRegenerateStory(t *testing.T) {
	v := New()
	req := &entity.RegenerateStoryRequest{
		Epic:              entity.Epic{ID: "EPIC-1", Title: "Auth"},
		Story:             entity.Story{ID: "EPIC-1-1", Title: "Login"},
		UserFeedback:      "more criteria",
		ConsensusMessages: validMessages(),
	}
	assert.NoError(t, v.ValidateRegenerateStory(req))

	missing := *req
	missing.Story.ID = ""
	err := v.ValidateRegenerateStory(&missing)
	require.ErrorIs(t, err, entity.ErrMissingField)
	assert.Contains(t, err.Error(), "story.id")

	missing = *req
	missing.Story.Title = ""
	err = v.ValidateRegenerateStory(&missing)
	require.ErrorIs(t, err, entity.ErrMissingField)
	assert.Contains(t, err.Error(), "story.title")
}
