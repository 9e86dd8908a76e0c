// Package validator checks request schemas at the API boundary. The
// pipeline behind it assumes well-typed input and never re-validates.
package validator

import (
	"fmt"

	"github.com/vishkar/storycrafter/internal/entity"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateGenerateBacklog validates GenerateBacklogRequest
func (v *Validator) ValidateGenerateBacklog(req *entity.GenerateBacklogRequest) error {
	return v.validateTranscript(req.ConsensusMessages)
}

// ValidateGenerateEpics validates GenerateEpicsRequest
func (v *Validator) ValidateGenerateEpics(req *entity.GenerateEpicsRequest) error {
	return v.validateTranscript(req.ConsensusMessages)
}

// ValidateGenerateStories validates GenerateStoriesRequest
func (v *Validator) ValidateGenerateStories(req *entity.GenerateStoriesRequest) error {
	if err := v.validateEpic(&req.Epic); err != nil {
		return err
	}
	return v.validateTranscript(req.ConsensusMessages)
}

// ValidateRegenerateEpic validates RegenerateEpicRequest
func (v *Validator) ValidateRegenerateEpic(req *entity.RegenerateEpicRequest) error {
	if err := v.validateEpic(&req.Epic); err != nil {
		return err
	}
	if req.UserFeedback == "" {
		return fmt.Errorf("%w: user_feedback", entity.ErrMissingField)
	}
	return v.validateTranscript(req.ConsensusMessages)
}

// ValidateRegenerateStory validates RegenerateStoryRequest
func (v *Validator) ValidateRegenerateStory(req *entity.RegenerateStoryRequest) error {
	if err := v.validateEpic(&req.Epic); err != nil {
		return err
	}
	if req.Story.ID == "" {
		return fmt.Errorf("%w: story.id", entity.ErrMissingField)
	}
	if req.Story.Title == "" {
		return fmt.Errorf("%w: story.title", entity.ErrMissingField)
	}
	if req.UserFeedback == "" {
		return fmt.Errorf("%w: user_feedback", entity.ErrMissingField)
	}
	return v.validateTranscript(req.ConsensusMessages)
}

func (v *Validator) validateTranscript(messages []entity.ConsensusMessage) error {
	if len(messages) == 0 {
		return entity.ErrEmptyTranscript
	}
	for i, msg := range messages {
		if err := msg.Role.Validate(); err != nil {
			return fmt.Errorf("consensus_messages[%d]: %w", i, err)
		}
		if msg.Content == "" {
			return fmt.Errorf("%w: consensus_messages[%d].content", entity.ErrMissingField, i)
		}
	}
	return nil
}

func (v *Validator) validateEpic(epic *entity.Epic) error {
	if epic.ID == "" {
		return fmt.Errorf("%w: epic.id", entity.ErrMissingField)
	}
	if epic.Title == "" {
		return fmt.Errorf("%w: epic.title", entity.ErrMissingField)
	}
	return nil
}
