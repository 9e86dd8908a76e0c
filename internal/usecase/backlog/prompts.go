package backlog

import (
	"encoding/json"
	"fmt"

	"github.com/vishkar/storycrafter/internal/entity"
)

// Prompt builders. Every prompt demands JSON-only output; the extractor
// still tolerates prose and fencing because backends do not always comply.

func epicPlanPrompt(contextBlob string, minEpics, maxEpics int) string {
	countClause := fmt.Sprintf("%d-%d", minEpics, maxEpics)
	if minEpics == maxEpics {
		countClause = fmt.Sprintf("exactly %d", minEpics)
	}

	return fmt.Sprintf(`You are an expert Agile Product Owner creating a comprehensive project backlog.

Your task: generate a complete EPIC STRUCTURE for the project described below.

## REQUIREMENTS

Generate %s epics covering ALL project areas: authentication and user
management, core features, data management, UI/frontend, backend
infrastructure, testing, deployment, and any additional areas the
discussion calls for.

%s

## OUTPUT FORMAT

Return a JSON array of epics ONLY. No stories yet.

[
  {
    "title": "Epic Title",
    "description": "Detailed epic description (2-3 sentences)",
    "priority": "High|Medium|Low",
    "category": "MVP|Post-MVP|Technical",
    "story_count_target": 4
  }
]

Generate %s epics. JSON only, no markdown:`, countClause, contextBlob, countClause)
}

func storyExpansionPrompt(epic entity.Epic, contextBlob string) string {
	target := epic.StoryCountTarget
	if target <= 0 {
		target = entity.DefaultStoryCountTarget
	}

	return fmt.Sprintf(`You are an expert Agile Product Owner and Technical Architect.
Generate %d DETAILED USER STORIES for this epic:

## EPIC DETAILS
ID: %s
Title: %s
Description: %s
Category: %s

## FULL PROJECT CONTEXT
%s

## OUTPUT FORMAT

Return a JSON array of stories. CRITICAL: output ONLY valid JSON, no markdown:

[
  {
    "title": "Concise Story Title",
    "description": "As a [persona], I want [goal], so that [benefit]",
    "acceptance_criteria": [
      "GIVEN [precondition] WHEN [action] THEN [expected result]",
      "System validates [specific condition] and displays [specific feedback]",
      "[Edge case]: System handles [error scenario] by [expected behavior]",
      "[Non-functional]: [Performance/security/usability requirement met]"
    ],
    "technical_tasks": ["Task 1", "Task 2", "Task 3"],
    "priority": "P0|P1|P2|P3",
    "story_points": 5,
    "estimated_hours": 10,
    "dependencies": [],
    "tags": ["mvp", "backend"],
    "layer": "fullstack|backend|frontend|database|infrastructure"
  }
]

Each story needs 4-7 acceptance criteria using Given-When-Then where
applicable, edge cases and non-functional requirements included.
Generate %d stories. Output JSON only:`, target, epic.ID, epic.Title, epic.Description, epic.Category, contextBlob, target)
}

func epicRegenerationPrompt(epic entity.Epic, feedback, contextBlob string) string {
	original := serializeForPrompt(struct {
		ID          string              `json:"id"`
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Priority    entity.EpicPriority `json:"priority"`
		Category    entity.EpicCategory `json:"category"`
	}{epic.ID, epic.Title, epic.Description, epic.Priority, epic.Category})

	return fmt.Sprintf(`You are an expert Agile Product Owner revising a project epic.

## ORIGINAL EPIC

%s

## USER FEEDBACK

%s

## PROJECT CONTEXT

%s

## TASK

Generate an IMPROVED VERSION of this epic. Revise the original rather
than inventing a new one. Address every point in the feedback, keep
the same ID (%s) and the same general scope unless the feedback says
otherwise.

## OUTPUT FORMAT

Return a single JSON object:

{
  "id": "%s",
  "title": "Improved Epic Title",
  "description": "Enhanced epic description (2-3 sentences)",
  "priority": "High|Medium|Low",
  "category": "MVP|Post-MVP|Technical",
  "story_count_target": 4,
  "regeneration_notes": "Brief note on what was changed based on feedback"
}

JSON only, no markdown:`, original, feedback, contextBlob, epic.ID, epic.ID)
}

func storyRegenerationPrompt(epic entity.Epic, story entity.Story, feedback, contextBlob string) string {
	original := serializeForPrompt(story)

	return fmt.Sprintf(`You are an expert Agile Product Owner revising a user story.

## PARENT EPIC: %s
%s

## ORIGINAL STORY

%s

## USER FEEDBACK

%s

## PROJECT CONTEXT

%s

## TASK

Generate an IMPROVED VERSION of this story that addresses the feedback.
Revise the original rather than inventing a new one. Keep the same ID (%s).
Use "As a [persona], I want [goal], so that [benefit]" format, 5-7
detailed acceptance criteria (Given-When-Then where applicable, edge
cases, non-functional requirements), 4-7 technical tasks, realistic story
points (2, 3, 5, 8 or 13) and hours.

## OUTPUT FORMAT

Return a single JSON object with the same fields as the original story
plus a "regeneration_notes" field summarizing the change.

JSON only, no markdown:`, epic.Title, epic.Description, original, feedback, contextBlob, story.ID)
}

func serializeForPrompt(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
