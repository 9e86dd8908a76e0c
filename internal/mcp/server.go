// Package mcp exposes the generation pipeline as MCP tools over stdio, so
// AI coding agents can drive backlog generation directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/pkg/validator"
	"github.com/vishkar/storycrafter/internal/usecase/backlog"
)

// Version is set at build time via ldflags.
var Version = "2.0.0"

// New creates the MCP server with the five generation tools registered.
func New(usecase *backlog.Usecase, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"storycrafter",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	base := baseTool{usecase: usecase, validator: validator.New(), logger: logger}

	backlogTool := &GenerateBacklogTool{base}
	s.AddTool(backlogTool.Definition(), backlogTool.Handle)

	epicsTool := &GenerateEpicsTool{base}
	s.AddTool(epicsTool.Definition(), epicsTool.Handle)

	storiesTool := &GenerateStoriesTool{base}
	s.AddTool(storiesTool.Definition(), storiesTool.Handle)

	regenEpicTool := &RegenerateEpicTool{base}
	s.AddTool(regenEpicTool.Definition(), regenEpicTool.Handle)

	regenStoryTool := &RegenerateStoryTool{base}
	s.AddTool(regenStoryTool.Definition(), regenStoryTool.Handle)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const serverInstructions = `StoryCrafter turns a multi-agent planning discussion into a typed
project backlog (epics and user stories).

Workflow:
  1. generate_backlog runs the full pipeline: epic planning, parallel
     story expansion, dependency audit, quality scan.
  2. Or run the phases separately: generate_epics first, then
     generate_stories per epic with the same transcript.
  3. regenerate_epic / regenerate_story revise a single record against
     user feedback, preserving its id.

The transcript is a JSON array of {"role", "content"} messages. Valid
roles: system, alex (product), blake (architecture), casey (planning).`
