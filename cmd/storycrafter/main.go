package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vishkar/storycrafter/internal/builder"
	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/mcp"
	"github.com/vishkar/storycrafter/internal/pkg/formatter"
	"github.com/vishkar/storycrafter/internal/pkg/logger"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	titleColor   = color.New(color.FgMagenta, color.Bold)
)

var environment string

func main() {
	rootCmd := &cobra.Command{
		Use:   "storycrafter",
		Short: "StoryCrafter - consensus transcripts to typed project backlogs",
		Long: `StoryCrafter turns a multi-agent planning discussion into a complete
project backlog: epics planned by one generative backend, stories
expanded by another, with dependency audit and quality scoring.`,
	}

	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "local", "Environment to run (local, prod, or custom)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)

	generateCmd := &cobra.Command{
		Use:   "generate <transcript-file>",
		Short: "Generate a backlog from a transcript file",
		Long: `Run the full generation workflow once and write the result to a file.

The transcript file (YAML or JSON) holds the consensus discussion:

  consensus_messages:
    - role: system
      content: "Project: Fitness tracker"
    - role: alex
      content: "MVP features: ..."
  project_metadata:
    project_name: Fitness Tracker`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	generateCmd.Flags().StringP("output", "o", "backlog", "Output file path (extension added per format)")
	generateCmd.Flags().StringP("format", "f", "json", "Output format (json, markdown, pdf)")
	rootCmd.AddCommand(generateCmd)

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		RunE:  runMCP,
	}
	rootCmd.AddCommand(mcpCmd)

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := builder.Build(environment)
	if err != nil {
		return err
	}
	return app.Run()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	transcriptFile := args[0]
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := config.LoadConfigForEnv(environment)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := builder.SetupLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer zapLogger.Sync()

	input, err := loadTranscript(transcriptFile)
	if err != nil {
		return err
	}

	titleColor.Println("StoryCrafter - Backlog Generation")
	infoColor.Printf("Transcript: %s (%d messages)\n", transcriptFile, len(input.ConsensusMessages))

	usecase := builder.BuildUsecase(cfg, zapLogger)
	ctx := logger.Inject(context.Background(), zapLogger)

	backlog, err := usecase.GenerateBacklog(ctx, input.ConsensusMessages, input.ProjectMetadata)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	path, err := writeBacklog(backlog, output, formatter.Format(format))
	if err != nil {
		return err
	}

	printSummary(backlog, path)
	return nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigForEnv(environment)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// MCP talks on stdout; logs must go to stderr only.
	zapLogger, err := builder.SetupLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer zapLogger.Sync()

	usecase := builder.BuildUsecase(cfg, zapLogger)
	return mcp.ServeStdio(mcp.New(usecase, zapLogger))
}

// transcriptInput is the on-disk shape of a transcript file.
type transcriptInput struct {
	ConsensusMessages []entity.ConsensusMessage `json:"consensus_messages" yaml:"consensus_messages"`
	ProjectMetadata   *entity.ProjectMetadata   `json:"project_metadata,omitempty" yaml:"project_metadata,omitempty"`
}

func loadTranscript(path string) (*transcriptInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript file: %w", err)
	}

	var input transcriptInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &input)
	default:
		err = yaml.Unmarshal(data, &input)
	}
	if err != nil {
		return nil, fmt.Errorf("parse transcript file: %w", err)
	}

	if len(input.ConsensusMessages) == 0 {
		return nil, entity.ErrEmptyTranscript
	}
	return &input, nil
}

func writeBacklog(backlog *entity.Backlog, output string, format formatter.Format) (string, error) {
	f, err := formatter.NewFactory().Create(format)
	if err != nil {
		return "", err
	}

	data, err := f.Format(backlog)
	if err != nil {
		return "", fmt.Errorf("format backlog: %w", err)
	}

	path := output
	if filepath.Ext(path) == "" {
		path += f.FileExtension()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return path, nil
}

func printSummary(backlog *entity.Backlog, path string) {
	successColor.Printf("Generated %d epics, %d stories (~%d hours)\n",
		backlog.Metadata.TotalEpics,
		backlog.Metadata.TotalStories,
		backlog.Metadata.TotalEstimatedHours,
	)

	for _, epic := range backlog.Epics {
		infoColor.Printf("  %s: %s (%d stories)\n", epic.ID, epic.Title, len(epic.Stories))
	}

	if backlog.Metadata.Partial {
		warningColor.Printf("Partial result: expansion failed for %s\n",
			strings.Join(backlog.Metadata.FailedEpics, ", "))
	}
	if len(backlog.Metadata.UnresolvedDependencies) > 0 {
		warningColor.Printf("%d unresolved dependency references flagged\n",
			len(backlog.Metadata.UnresolvedDependencies))
	}

	successColor.Printf("Backlog written to %s\n", path)
}
