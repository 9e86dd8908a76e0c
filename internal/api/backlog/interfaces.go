package backlog

import (
	"context"

	"github.com/vishkar/storycrafter/internal/entity"
)

type BacklogUsecase interface {
	GenerateBacklog(ctx context.Context, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (*entity.Backlog, error)
	GenerateEpics(ctx context.Context, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) ([]entity.Epic, error)
	GenerateStories(ctx context.Context, epic entity.Epic, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) ([]entity.Story, error)
	RegenerateEpic(ctx context.Context, epic entity.Epic, feedback string, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (entity.Epic, error)
	RegenerateStory(ctx context.Context, epic entity.Epic, story entity.Story, feedback string, messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (entity.Story, error)
}
