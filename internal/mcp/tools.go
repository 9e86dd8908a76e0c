package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/pkg/logger"
	"github.com/vishkar/storycrafter/internal/pkg/validator"
	"github.com/vishkar/storycrafter/internal/usecase/backlog"
)

// Tool arguments carry structured payloads as JSON strings: the MCP
// clients in the wild handle flat string arguments far more reliably than
// deeply nested schemas.

type baseTool struct {
	usecase   *backlog.Usecase
	validator *validator.Validator
	logger    *zap.Logger
}

func (t baseTool) ctx(ctx context.Context, action string) context.Context {
	return logger.WithAction(logger.Inject(ctx, t.logger), action)
}

func (t baseTool) parseTranscript(req mcp.CallToolRequest) ([]entity.ConsensusMessage, *entity.ProjectMetadata, error) {
	var messages []entity.ConsensusMessage
	raw := req.GetString("consensus_messages", "")
	if strings.TrimSpace(raw) == "" {
		return nil, nil, entity.ErrEmptyTranscript
	}
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, nil, fmt.Errorf("consensus_messages is not a JSON array of messages: %w", err)
	}

	var meta *entity.ProjectMetadata
	if rawMeta := req.GetString("project_metadata", ""); strings.TrimSpace(rawMeta) != "" {
		meta = &entity.ProjectMetadata{}
		if err := json.Unmarshal([]byte(rawMeta), meta); err != nil {
			return nil, nil, fmt.Errorf("project_metadata is not a JSON object: %w", err)
		}
	}

	return messages, meta, nil
}

func parseEpic(req mcp.CallToolRequest) (entity.Epic, error) {
	var epic entity.Epic
	raw := req.GetString("epic", "")
	if strings.TrimSpace(raw) == "" {
		return epic, fmt.Errorf("%w: epic", entity.ErrMissingField)
	}
	if err := json.Unmarshal([]byte(raw), &epic); err != nil {
		return epic, fmt.Errorf("epic is not a JSON object: %w", err)
	}
	return epic, nil
}

func parseStory(req mcp.CallToolRequest) (entity.Story, error) {
	var story entity.Story
	raw := req.GetString("story", "")
	if strings.TrimSpace(raw) == "" {
		return story, fmt.Errorf("%w: story", entity.ErrMissingField)
	}
	if err := json.Unmarshal([]byte(raw), &story); err != nil {
		return story, fmt.Errorf("story is not a JSON object: %w", err)
	}
	return story, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func transcriptArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("consensus_messages",
			mcp.Required(),
			mcp.Description(`JSON array of transcript messages: [{"role": "alex", "content": "..."}]. `+
				"Valid roles: system, alex, blake, casey. Order is preserved."),
		),
		mcp.WithString("project_metadata",
			mcp.Description(`Optional JSON object with project fields: project_name, project_description, `+
				"target_users, platform, timeline, team_size."),
		),
	}
}

// GenerateBacklogTool handles the generate_backlog MCP tool.
type GenerateBacklogTool struct{ baseTool }

func (t *GenerateBacklogTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Run the full generation workflow: plan epics from the consensus " +
			"transcript, expand every epic into user stories in parallel, audit dependencies, " +
			"and return the assembled backlog with metadata."),
	}, transcriptArgs()...)
	return mcp.NewTool("generate_backlog", opts...)
}

func (t *GenerateBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = t.ctx(ctx, "generate_backlog")

	messages, meta, err := t.parseTranscript(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.validator.ValidateGenerateBacklog(&entity.GenerateBacklogRequest{ConsensusMessages: messages, ProjectMetadata: meta}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := t.usecase.GenerateBacklog(ctx, messages, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// GenerateEpicsTool handles the generate_epics MCP tool.
type GenerateEpicsTool struct{ baseTool }

func (t *GenerateEpicsTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Generate the epic structure only (no stories). First phase of the " +
			"two-phase flow; follow up with generate_stories per epic."),
	}, transcriptArgs()...)
	return mcp.NewTool("generate_epics", opts...)
}

func (t *GenerateEpicsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = t.ctx(ctx, "generate_epics")

	messages, meta, err := t.parseTranscript(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.validator.ValidateGenerateEpics(&entity.GenerateEpicsRequest{ConsensusMessages: messages, ProjectMetadata: meta}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	epics, err := t.usecase.GenerateEpics(ctx, messages, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(epics)
}

// GenerateStoriesTool handles the generate_stories MCP tool.
type GenerateStoriesTool struct{ baseTool }

func (t *GenerateStoriesTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Expand one epic into detailed user stories. Pass the epic exactly " +
			"as returned by generate_epics, plus the same transcript."),
		mcp.WithString("epic",
			mcp.Required(),
			mcp.Description("JSON object of the epic to expand, as returned by generate_epics."),
		),
	}, transcriptArgs()...)
	return mcp.NewTool("generate_stories", opts...)
}

func (t *GenerateStoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = t.ctx(ctx, "generate_stories")

	messages, meta, err := t.parseTranscript(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epic, err := parseEpic(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.validator.ValidateGenerateStories(&entity.GenerateStoriesRequest{Epic: epic, ConsensusMessages: messages, ProjectMetadata: meta}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stories, err := t.usecase.GenerateStories(ctx, epic, messages, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stories)
}

// RegenerateEpicTool handles the regenerate_epic MCP tool.
type RegenerateEpicTool struct{ baseTool }

func (t *RegenerateEpicTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Revise an existing epic against user feedback. The epic keeps its " +
			"id and its current stories; only the framing changes."),
		mcp.WithString("epic",
			mcp.Required(),
			mcp.Description("JSON object of the epic to revise."),
		),
		mcp.WithString("user_feedback",
			mcp.Required(),
			mcp.Description("What should change, in the user's words."),
		),
	}, transcriptArgs()...)
	return mcp.NewTool("regenerate_epic", opts...)
}

func (t *RegenerateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = t.ctx(ctx, "regenerate_epic")

	messages, meta, err := t.parseTranscript(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epic, err := parseEpic(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	feedback := req.GetString("user_feedback", "")
	if err := t.validator.ValidateRegenerateEpic(&entity.RegenerateEpicRequest{Epic: epic, UserFeedback: feedback, ConsensusMessages: messages, ProjectMetadata: meta}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	revised, err := t.usecase.RegenerateEpic(ctx, epic, feedback, messages, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(revised)
}

// RegenerateStoryTool handles the regenerate_story MCP tool.
type RegenerateStoryTool struct{ baseTool }

func (t *RegenerateStoryTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Revise an existing story against user feedback within its parent " +
			"epic. The story keeps its id."),
		mcp.WithString("epic",
			mcp.Required(),
			mcp.Description("JSON object of the parent epic."),
		),
		mcp.WithString("story",
			mcp.Required(),
			mcp.Description("JSON object of the story to revise."),
		),
		mcp.WithString("user_feedback",
			mcp.Required(),
			mcp.Description("What should change, in the user's words."),
		),
	}, transcriptArgs()...)
	return mcp.NewTool("regenerate_story", opts...)
}

func (t *RegenerateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = t.ctx(ctx, "regenerate_story")

	messages, meta, err := t.parseTranscript(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	epic, err := parseEpic(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	story, err := parseStory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	feedback := req.GetString("user_feedback", "")
	if err := t.validator.ValidateRegenerateStory(&entity.RegenerateStoryRequest{Epic: epic, Story: story, UserFeedback: feedback, ConsensusMessages: messages, ProjectMetadata: meta}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	revised, err := t.usecase.RegenerateStory(ctx, epic, story, feedback, messages, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(revised)
}
