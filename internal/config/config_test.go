package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")

	cfg, err := LoadConfigForEnv("test")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "test", cfg.Environment)
	assert.True(t, cfg.EnableMocks)

	assert.Equal(t, defaultPlanningBaseURL, cfg.PlanningBackendCfg.BaseURL)
	assert.Equal(t, defaultExpansionBaseURL, cfg.ExpansionBackendCfg.BaseURL)
	assert.Equal(t, defaultPlanningModel, cfg.PlanningBackendCfg.Model)
	assert.Equal(t, defaultExpansionModel, cfg.ExpansionBackendCfg.Model)
	assert.Equal(t, 8192, cfg.PlanningBackendCfg.MaxTokens)
	assert.Equal(t, 0.5, cfg.ExpansionBackendCfg.Temperature)

	assert.Equal(t, 4, cfg.PipelineCfg.ExpansionConcurrency)
	assert.Equal(t, 6, cfg.PipelineCfg.TargetEpicCountMin)
	assert.Equal(t, 8, cfg.PipelineCfg.TargetEpicCountMax)
	assert.Equal(t, DependencyPolicyFlag, cfg.PipelineCfg.DependencyPolicy)
	assert.Equal(t, 10*time.Minute, cfg.PipelineCfg.ContextCacheTTL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("PLANNING_BASE_URL", "http://localhost:4000")
	t.Setenv("PLANNING_MODEL", "claude-test")
	t.Setenv("PIPELINE_EXPANSION_CONCURRENCY", "2")
	t.Setenv("PIPELINE_DEPENDENCY_POLICY", "prune")

	cfg, err := LoadConfigForEnv("test")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "http://localhost:4000", cfg.PlanningBackendCfg.BaseURL)
	assert.Equal(t, "claude-test", cfg.PlanningBackendCfg.Model)
	assert.Equal(t, 2, cfg.PipelineCfg.ExpansionConcurrency)
	assert.Equal(t, DependencyPolicyPrune, cfg.PipelineCfg.DependencyPolicy)
}

func TestLoadConfigRequiresKeysWithoutMocks(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "false")
	t.Setenv("PLANNING_API_KEY", "")
	t.Setenv("EXPANSION_API_KEY", "")

	_, err := LoadConfigForEnv("test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLANNING_API_KEY")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"concurrency too low", "PIPELINE_EXPANSION_CONCURRENCY", "0", "EXPANSION_CONCURRENCY"},
		{"concurrency too high", "PIPELINE_EXPANSION_CONCURRENCY", "64", "EXPANSION_CONCURRENCY"},
		{"inverted epic range", "PIPELINE_TARGET_EPIC_COUNT_MAX", "2", "target epic count range"},
		{"unknown dependency policy", "PIPELINE_DEPENDENCY_POLICY", "ignore", "DEPENDENCY_POLICY"},
		{"max tokens too small", "PLANNING_MAX_TOKENS", "16", "MAX_TOKENS"},
		{"temperature out of range", "EXPANSION_TEMPERATURE", "3.5", "TEMPERATURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENABLE_MOCKS", "true")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfigForEnv("test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", getEnvFile("local"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.prod", getEnvFile("prod"))
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
