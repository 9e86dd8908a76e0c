package backlog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
)

const rawExcerptLimit = 240

// rawEpic mirrors what backends actually emit, before defaulting and
// validation. Numeric fields arrive as pointers so a missing field is
// distinguishable from zero.
type rawEpic struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Priority          string   `json:"priority"`
	Category          string   `json:"category"`
	StoryCountTarget  *float64 `json:"story_count_target"`
	RegenerationNotes string   `json:"regeneration_notes"`
}

type rawStory struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	TechnicalTasks     []string `json:"technical_tasks"`
	Priority           string   `json:"priority"`
	StoryPoints        *float64 `json:"story_points"`
	EstimatedHours     *float64 `json:"estimated_hours"`
	Dependencies       []string `json:"dependencies"`
	Tags               []string `json:"tags"`
	Layer              string   `json:"layer"`
	RegenerationNotes  string   `json:"regeneration_notes"`
}

// extractEpics recovers a list of epics from a raw backend response.
// Records missing a title or description are dropped with a warning; other
// invalid fields are defaulted. IDs are NOT assigned here, the planner
// owns them.
func extractEpics(ctx context.Context, raw string) ([]entity.Epic, error) {
	payload, err := recoverPayload(raw, entity.ShapeEpicList)
	if err != nil {
		return nil, err
	}

	var records []rawEpic
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, unparsable(raw, entity.ShapeEpicList)
	}

	epics := make([]entity.Epic, 0, len(records))
	dropped := 0
	for i, rec := range records {
		if missingRequiredFields(rec.Title, rec.Description) {
			dropped++
			ctxzap.Warn(ctx, "dropping epic record missing title or description", zap.Int("index", i))
			continue
		}
		epics = append(epics, coerceEpic(ctx, rec))
	}

	if len(epics) == 0 {
		if dropped > 0 {
			return nil, &entity.EmptyBatchError{ExpectedShape: entity.ShapeEpicList, Dropped: dropped}
		}
		return nil, unparsable(raw, entity.ShapeEpicList)
	}
	return epics, nil
}

// extractStories recovers a list of stories from a raw backend response.
func extractStories(ctx context.Context, raw string) ([]entity.Story, error) {
	payload, err := recoverPayload(raw, entity.ShapeStoryList)
	if err != nil {
		return nil, err
	}

	var records []rawStory
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, unparsable(raw, entity.ShapeStoryList)
	}

	stories := make([]entity.Story, 0, len(records))
	dropped := 0
	for i, rec := range records {
		if missingRequiredFields(rec.Title, rec.Description) {
			dropped++
			ctxzap.Warn(ctx, "dropping story record missing title or description", zap.Int("index", i))
			continue
		}
		stories = append(stories, coerceStory(ctx, rec))
	}

	if len(stories) == 0 {
		if dropped > 0 {
			return nil, &entity.EmptyBatchError{ExpectedShape: entity.ShapeStoryList, Dropped: dropped}
		}
		return nil, unparsable(raw, entity.ShapeStoryList)
	}
	return stories, nil
}

// extractEpic recovers a single epic object, used by regeneration.
func extractEpic(ctx context.Context, raw string) (entity.Epic, error) {
	payload, err := recoverPayload(raw, entity.ShapeEpic)
	if err != nil {
		return entity.Epic{}, err
	}

	var rec rawEpic
	if err := json.Unmarshal(payload, &rec); err != nil {
		return entity.Epic{}, unparsable(raw, entity.ShapeEpic)
	}
	if missingRequiredFields(rec.Title, rec.Description) {
		return entity.Epic{}, &entity.EmptyBatchError{ExpectedShape: entity.ShapeEpic, Dropped: 1}
	}
	return coerceEpic(ctx, rec), nil
}

// extractStory recovers a single story object, used by regeneration.
func extractStory(ctx context.Context, raw string) (entity.Story, error) {
	payload, err := recoverPayload(raw, entity.ShapeStory)
	if err != nil {
		return entity.Story{}, err
	}

	var rec rawStory
	if err := json.Unmarshal(payload, &rec); err != nil {
		return entity.Story{}, unparsable(raw, entity.ShapeStory)
	}
	if missingRequiredFields(rec.Title, rec.Description) {
		return entity.Story{}, &entity.EmptyBatchError{ExpectedShape: entity.ShapeStory, Dropped: 1}
	}
	return coerceStory(ctx, rec), nil
}

// missingRequiredFields reports whether a record lacks a usable title or
// description. Ids are not required here, they are assigned downstream.
func missingRequiredFields(title, description string) bool {
	return strings.TrimSpace(title) == "" || strings.TrimSpace(description) == ""
}

func coerceEpic(ctx context.Context, rec rawEpic) entity.Epic {
	epic := entity.Epic{
		ID:                rec.ID,
		Title:             strings.TrimSpace(rec.Title),
		Description:       strings.TrimSpace(rec.Description),
		Stories:           []entity.Story{},
		RegenerationNotes: rec.RegenerationNotes,
	}

	epic.Priority = entity.EpicPriority(rec.Priority)
	if !epic.Priority.Valid() {
		if rec.Priority != "" {
			ctxzap.Warn(ctx, "defaulting invalid epic priority",
				zap.String("title", epic.Title), zap.String("priority", rec.Priority))
		}
		epic.Priority = entity.EpicPriorityMedium
	}

	epic.Category = entity.EpicCategory(rec.Category)
	if !epic.Category.Valid() {
		if rec.Category != "" {
			ctxzap.Warn(ctx, "defaulting invalid epic category",
				zap.String("title", epic.Title), zap.String("category", rec.Category))
		}
		epic.Category = entity.CategoryMVP
	}

	epic.StoryCountTarget = entity.DefaultStoryCountTarget
	if rec.StoryCountTarget != nil && int(*rec.StoryCountTarget) > 0 {
		epic.StoryCountTarget = int(*rec.StoryCountTarget)
	}

	return epic
}

func coerceStory(ctx context.Context, rec rawStory) entity.Story {
	story := entity.Story{
		ID:                 rec.ID,
		Title:              strings.TrimSpace(rec.Title),
		Description:        strings.TrimSpace(rec.Description),
		AcceptanceCriteria: emptyIfNil(rec.AcceptanceCriteria),
		TechnicalTasks:     emptyIfNil(rec.TechnicalTasks),
		Dependencies:       emptyIfNil(rec.Dependencies),
		Tags:               emptyIfNil(rec.Tags),
		RegenerationNotes:  rec.RegenerationNotes,
	}

	story.Priority = entity.StoryPriority(rec.Priority)
	if !story.Priority.Valid() {
		story.Priority = entity.DefaultStoryPriority
	}

	story.Layer = entity.Layer(rec.Layer)
	if !story.Layer.Valid() {
		story.Layer = entity.DefaultLayer
	}

	if rec.StoryPoints != nil {
		points := int(*rec.StoryPoints)
		if entity.ValidStoryPointValue(points) {
			story.StoryPoints = points
		} else {
			ctxzap.Warn(ctx, "zeroing off-scale story points",
				zap.String("title", story.Title), zap.Int("story_points", points))
		}
	}

	if rec.EstimatedHours != nil && *rec.EstimatedHours > 0 {
		story.EstimatedHours = int(*rec.EstimatedHours)
	}

	return story
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// recoverPayload finds a JSON region of the expected shape inside raw.
// Recovery layers, in order: direct decode of the trimmed text, fence and
// prose stripping, balanced-region scan, and truncated-array repair for
// list shapes. Wrapper objects such as {"stories": [...]} are unwrapped.
func recoverPayload(raw string, shape entity.PayloadShape) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, unparsable(raw, shape)
	}

	candidates := []string{trimmed, stripWrapping(trimmed)}
	if region := balancedRegion(trimmed, shape.List()); region != "" {
		candidates = append(candidates, region)
	}
	if shape.List() {
		if repaired := repairTruncatedArray(trimmed); repaired != "" {
			candidates = append(candidates, repaired)
		}
	}

	for _, candidate := range candidates {
		if payload, ok := decodeCandidate(candidate, shape); ok {
			return payload, nil
		}
	}
	return nil, unparsable(raw, shape)
}

// decodeCandidate checks that candidate parses as JSON and matches the
// expected outer delimiter, unwrapping a single-key wrapper object first
// when a list shape arrives wrapped.
func decodeCandidate(candidate string, shape entity.PayloadShape) (json.RawMessage, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, false
	}

	switch {
	case shape.List() && candidate[0] == '[':
		return probe, true
	case shape.List() && candidate[0] == '{':
		if inner, ok := unwrapListObject(probe, shape); ok {
			return inner, true
		}
		return nil, false
	case !shape.List() && candidate[0] == '{':
		return probe, true
	}
	return nil, false
}

// unwrapListObject handles {"epics": [...]}, {"stories": [...]} and the
// generic single-key-with-array-value wrapper some backends produce.
func unwrapListObject(payload json.RawMessage, shape entity.PayloadShape) (json.RawMessage, bool) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, false
	}

	key := "epics"
	if shape == entity.ShapeStoryList {
		key = "stories"
	}
	if inner, ok := wrapper[key]; ok && isArray(inner) {
		return inner, true
	}

	if len(wrapper) == 1 {
		for _, inner := range wrapper {
			if isArray(inner) {
				return inner, true
			}
		}
	}
	return nil, false
}

func isArray(payload json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(payload))
	return trimmed != "" && trimmed[0] == '['
}

// stripWrapping removes markdown fences and leading/trailing prose around
// the first fenced block, or around the text when no fence exists.
func stripWrapping(raw string) string {
	if start := strings.Index(raw, "```"); start >= 0 {
		rest := raw[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			// Drop the info string ("json" etc.) on the fence line.
			if !strings.ContainsAny(rest[:nl], "{[") {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(raw)
}

// balancedRegion returns the first balanced top-level JSON region of the
// requested delimiter type, respecting string literals and escapes.
func balancedRegion(raw string, wantArray bool) string {
	open, close := byte('{'), byte('}')
	if wantArray {
		open, close = '[', ']'
	}

	start := strings.IndexByte(raw, open)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// repairTruncatedArray salvages an array cut off mid-stream by a token
// budget: keep everything up to the last complete top-level element and
// close the array.
func repairTruncatedArray(raw string) string {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	lastComplete := -1
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 1 {
				// A top-level element of the array just closed.
				lastComplete = i
			}
		}
	}

	if lastComplete < 0 {
		return ""
	}
	return raw[start:lastComplete+1] + "]"
}

func unparsable(raw string, shape entity.PayloadShape) error {
	excerpt := strings.TrimSpace(raw)
	if len(excerpt) > rawExcerptLimit {
		excerpt = excerpt[:rawExcerptLimit]
	}
	return &entity.UnparsableResponseError{ExpectedShape: shape, RawExcerpt: excerpt}
}
