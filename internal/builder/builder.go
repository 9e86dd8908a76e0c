package builder

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/api"
	backlogapi "github.com/vishkar/storycrafter/internal/api/backlog"
	"github.com/vishkar/storycrafter/internal/config"
	"github.com/vishkar/storycrafter/internal/integration/anthropic"
	"github.com/vishkar/storycrafter/internal/integration/mock"
	"github.com/vishkar/storycrafter/internal/integration/openai"
	"github.com/vishkar/storycrafter/internal/pkg/validator"
	"github.com/vishkar/storycrafter/internal/usecase/backlog"
)

// Build assembles the HTTP server application for the given environment.
func Build(environment string) (*App, error) {
	cfg, err := config.LoadConfigForEnv(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	usecase := BuildUsecase(cfg, logger)

	// Setup API handler
	backlogHandler := backlogapi.NewHandler(usecase, validator.New())
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(backlogHandler, logger)
	logger.Info("HTTP router configured")

	// Write timeout covers a full generation run; see api.SetupRouter for
	// the matching request timeout.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 11 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// BuildUsecase wires backends and the pipeline. Shared by the HTTP server,
// the CLI one-shot mode, and the MCP server.
func BuildUsecase(cfg *config.Config, logger *zap.Logger) *backlog.Usecase {
	var planning, expansion backlog.GenerativeBackend

	if cfg.EnableMocks {
		logger.Info("Using mock generative backends")
		planning = mock.NewBackend("planning-mock")
		expansion = mock.NewBackend("expansion-mock")
	} else {
		logger.Info("Using real generative backends",
			zap.String("planning_model", cfg.PlanningBackendCfg.Model),
			zap.String("expansion_model", cfg.ExpansionBackendCfg.Model),
		)
		planning = anthropic.NewConnector(cfg.PlanningBackendCfg, logger)
		expansion = openai.NewConnector(cfg.ExpansionBackendCfg, logger)
	}

	return backlog.NewUsecase(cfg, planning, expansion)
}

// SetupLogger builds the application logger for non-server entrypoints.
func SetupLogger(level string) (*zap.Logger, error) {
	return setupLogger(level)
}
