package entity

import (
	"fmt"
	"time"
)

// Role identifies a participant in the consensus discussion. The set is
// fixed: the system prompt plus the three planning agents.
type Role string

const (
	RoleSystem Role = "system"
	RoleAlex   Role = "alex"  // product manager
	RoleBlake  Role = "blake" // technical architect
	RoleCasey  Role = "casey" // project manager
)

func (r Role) Validate() error {
	switch r {
	case RoleSystem, RoleAlex, RoleBlake, RoleCasey:
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRole, string(r))
	}
}

// ConsensusMessage is a single role-tagged message of the planning
// discussion. Message order is meaningful and must be preserved.
type ConsensusMessage struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ProjectMetadata is an optional bag of free-text project fields. Absent
// fields are omitted from prompt context, never synthesized.
type ProjectMetadata struct {
	ProjectName        string `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	ProjectDescription string `json:"project_description,omitempty" yaml:"project_description,omitempty"`
	TargetUsers        string `json:"target_users,omitempty" yaml:"target_users,omitempty"`
	Platform           string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Timeline           string `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	TeamSize           string `json:"team_size,omitempty" yaml:"team_size,omitempty"`
}

// EpicPriority is the business priority of an epic.
type EpicPriority string

const (
	EpicPriorityHigh   EpicPriority = "High"
	EpicPriorityMedium EpicPriority = "Medium"
	EpicPriorityLow    EpicPriority = "Low"
)

func (p EpicPriority) Valid() bool {
	switch p {
	case EpicPriorityHigh, EpicPriorityMedium, EpicPriorityLow:
		return true
	}
	return false
}

// EpicCategory groups epics by delivery phase.
type EpicCategory string

const (
	CategoryMVP       EpicCategory = "MVP"
	CategoryPostMVP   EpicCategory = "Post-MVP"
	CategoryTechnical EpicCategory = "Technical"
)

func (c EpicCategory) Valid() bool {
	switch c {
	case CategoryMVP, CategoryPostMVP, CategoryTechnical:
		return true
	}
	return false
}

// StoryPriority is the implementation priority of a story.
type StoryPriority string

const (
	StoryPriorityP0 StoryPriority = "P0"
	StoryPriorityP1 StoryPriority = "P1"
	StoryPriorityP2 StoryPriority = "P2"
	StoryPriorityP3 StoryPriority = "P3"
)

func (p StoryPriority) Valid() bool {
	switch p {
	case StoryPriorityP0, StoryPriorityP1, StoryPriorityP2, StoryPriorityP3:
		return true
	}
	return false
}

// Layer names the slice of the system a story touches.
type Layer string

const (
	LayerFullstack      Layer = "fullstack"
	LayerBackend        Layer = "backend"
	LayerFrontend       Layer = "frontend"
	LayerDatabase       Layer = "database"
	LayerInfrastructure Layer = "infrastructure"
)

func (l Layer) Valid() bool {
	switch l {
	case LayerFullstack, LayerBackend, LayerFrontend, LayerDatabase, LayerInfrastructure:
		return true
	}
	return false
}

// Defaults applied to records coming back from a generative backend.
const (
	DefaultStoryCountTarget = 4
	DefaultStoryPriority    = StoryPriorityP1
	DefaultLayer            = LayerFullstack
)

// ValidStoryPoints is the accepted scoring scale. 0 means "unscored".
var ValidStoryPoints = []int{2, 3, 5, 8, 13}

func ValidStoryPointValue(p int) bool {
	if p == 0 {
		return true
	}
	for _, v := range ValidStoryPoints {
		if p == v {
			return true
		}
	}
	return false
}

// Epic is a top-level backlog grouping. ID has the form "EPIC-<n>",
// assigned in generation order and immutable afterwards.
type Epic struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Priority         EpicPriority `json:"priority"`
	Category         EpicCategory `json:"category"`
	StoryCountTarget int          `json:"story_count_target,omitempty"`
	Stories          []Story      `json:"stories"`

	// RegenerationNotes is set only by feedback-driven regeneration.
	RegenerationNotes string `json:"regeneration_notes,omitempty"`

	// ExpansionError marks an epic whose story expansion failed during
	// full-backlog assembly. The epic is kept with an empty story list.
	ExpansionError string `json:"expansion_error,omitempty"`
}

// Story is a single implementable unit of work. ID has the form
// "<epic_id>-<n>", 1-based within the epic, immutable afterwards.
type Story struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	AcceptanceCriteria []string      `json:"acceptance_criteria"`
	TechnicalTasks     []string      `json:"technical_tasks"`
	Priority           StoryPriority `json:"priority"`
	StoryPoints        int           `json:"story_points"`
	EstimatedHours     int           `json:"estimated_hours"`
	Dependencies       []string      `json:"dependencies"`
	Tags               []string      `json:"tags"`
	Layer              Layer         `json:"layer"`

	RegenerationNotes string `json:"regeneration_notes,omitempty"`
}

// ProjectInfo is the project echo carried on an assembled backlog.
type ProjectInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TargetUsers string `json:"target_users,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// BacklogMetadata is derived on every assembly, never hand-edited.
type BacklogMetadata struct {
	TotalEpics          int       `json:"total_epics"`
	TotalStories        int       `json:"total_stories"`
	TotalEstimatedHours int       `json:"total_estimated_hours"`
	GeneratedAt         time.Time `json:"generated_at"`
	Generator           string    `json:"generator"`
	GenerationID        string    `json:"generation_id"`

	// Partial is set when at least one epic's expansion failed and the
	// backlog was assembled best-effort.
	Partial     bool     `json:"partial,omitempty"`
	FailedEpics []string `json:"failed_epics,omitempty"`

	// UnresolvedDependencies lists "<story_id> -> <referenced_id>" pairs
	// whose target was not produced in this generation run.
	UnresolvedDependencies []string `json:"unresolved_dependencies,omitempty"`
}

// Backlog is the full generation result. Metadata is a derived cache and
// is fully reconstructible from Epics.
type Backlog struct {
	Project  ProjectInfo     `json:"project"`
	Epics    []Epic          `json:"epics"`
	Metadata BacklogMetadata `json:"metadata"`
}

// QualityIndicator names one of the four textual pattern families used to
// score acceptance-criteria depth.
type QualityIndicator string

const (
	IndicatorGivenWhenThen QualityIndicator = "given_when_then"
	IndicatorEdgeCase      QualityIndicator = "edge_case"
	IndicatorNonFunctional QualityIndicator = "non_functional"
	IndicatorValidation    QualityIndicator = "validation"
)

// QualityReport is the derived, non-persisted result of scoring one
// story's acceptance criteria.
type QualityReport struct {
	StoryID           string             `json:"story_id"`
	IndicatorsPresent []QualityIndicator `json:"indicators_present"`
	Score             int                `json:"score"`
	CriteriaCount     int                `json:"criteria_count"`
	PassesMinimum     bool               `json:"passes_minimum"`
	Warnings          []string           `json:"warnings,omitempty"`
}
