package backlog

import (
	"time"

	"github.com/vishkar/storycrafter/internal/entity"
)

func toBacklogResponse(backlog *entity.Backlog) *entity.BacklogResponse {
	return &entity.BacklogResponse{
		Success: true,
		Backlog: backlog,
		Metadata: &entity.GenerationSummary{
			TotalEpics:          backlog.Metadata.TotalEpics,
			TotalStories:        backlog.Metadata.TotalStories,
			TotalEstimatedHours: backlog.Metadata.TotalEstimatedHours,
			GeneratedAt:         backlog.Metadata.GeneratedAt,
		},
	}
}

func toEpicsResponse(epics []entity.Epic) *entity.EpicsResponse {
	return &entity.EpicsResponse{
		Success: true,
		Epics:   epics,
		Metadata: &entity.GenerationSummary{
			TotalEpics:  len(epics),
			GeneratedAt: time.Now().UTC(),
		},
	}
}

func toStoriesResponse(epicID string, stories []entity.Story) *entity.StoriesResponse {
	return &entity.StoriesResponse{
		Success: true,
		Stories: stories,
		Metadata: &entity.GenerationSummary{
			TotalStories: len(stories),
			EpicID:       epicID,
			GeneratedAt:  time.Now().UTC(),
		},
	}
}

func toEpicResponse(epic entity.Epic) *entity.EpicResponse {
	return &entity.EpicResponse{
		Success: true,
		Epic:    &epic,
		Metadata: &entity.GenerationSummary{
			EpicID:      epic.ID,
			GeneratedAt: time.Now().UTC(),
		},
	}
}

func toStoryResponse(story entity.Story) *entity.StoryResponse {
	return &entity.StoryResponse{
		Success: true,
		Story:   &story,
		Metadata: &entity.GenerationSummary{
			GeneratedAt: time.Now().UTC(),
		},
	}
}
