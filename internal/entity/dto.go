package entity

import "time"

// Transport request bodies. Schema validation happens at the API boundary
// (internal/pkg/validator) before any of these reach the pipeline.

type GenerateBacklogRequest struct {
	ConsensusMessages []ConsensusMessage `json:"consensus_messages"`
	ProjectMetadata   *ProjectMetadata   `json:"project_metadata,omitempty"`
}

type GenerateEpicsRequest struct {
	ConsensusMessages []ConsensusMessage `json:"consensus_messages"`
	ProjectMetadata   *ProjectMetadata   `json:"project_metadata,omitempty"`
}

type GenerateStoriesRequest struct {
	Epic              Epic               `json:"epic"`
	ConsensusMessages []ConsensusMessage `json:"consensus_messages"`
	ProjectMetadata   *ProjectMetadata   `json:"project_metadata,omitempty"`
}

type RegenerateEpicRequest struct {
	Epic              Epic               `json:"epic"`
	UserFeedback      string             `json:"user_feedback"`
	ConsensusMessages []ConsensusMessage `json:"consensus_messages"`
	ProjectMetadata   *ProjectMetadata   `json:"project_metadata,omitempty"`
}

type RegenerateStoryRequest struct {
	Epic              Epic               `json:"epic"`
	Story             Story              `json:"story"`
	UserFeedback      string             `json:"user_feedback"`
	ConsensusMessages []ConsensusMessage `json:"consensus_messages"`
	ProjectMetadata   *ProjectMetadata   `json:"project_metadata,omitempty"`
}

// Transport response bodies: a success envelope with summary counts and a
// generation timestamp, mirroring what downstream consumers expect.

type BacklogResponse struct {
	Success  bool               `json:"success"`
	Backlog  *Backlog           `json:"backlog,omitempty"`
	Metadata *GenerationSummary `json:"metadata,omitempty"`
}

type EpicsResponse struct {
	Success  bool               `json:"success"`
	Epics    []Epic             `json:"epics"`
	Metadata *GenerationSummary `json:"metadata,omitempty"`
}

type StoriesResponse struct {
	Success  bool               `json:"success"`
	Stories  []Story            `json:"stories"`
	Metadata *GenerationSummary `json:"metadata,omitempty"`
}

type EpicResponse struct {
	Success  bool               `json:"success"`
	Epic     *Epic              `json:"epic,omitempty"`
	Metadata *GenerationSummary `json:"metadata,omitempty"`
}

type StoryResponse struct {
	Success  bool               `json:"success"`
	Story    *Story             `json:"story,omitempty"`
	Metadata *GenerationSummary `json:"metadata,omitempty"`
}

// GenerationSummary carries the envelope counts; fields not relevant to an
// operation are omitted.
type GenerationSummary struct {
	TotalEpics          int       `json:"total_epics,omitempty"`
	TotalStories        int       `json:"total_stories,omitempty"`
	TotalEstimatedHours int       `json:"total_estimated_hours,omitempty"`
	EpicID              string    `json:"epic_id,omitempty"`
	GeneratedAt         time.Time `json:"generated_at"`
}
