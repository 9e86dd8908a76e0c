package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/vishkar/storycrafter/internal/pkg/retry"
)

// DependencyPolicy controls how unresolved story dependency references are
// handled during assembly.
type DependencyPolicy string

const (
	// DependencyPolicyFlag keeps the reference and records it in the
	// backlog's unresolved-dependency list.
	DependencyPolicyFlag DependencyPolicy = "flag"
	// DependencyPolicyPrune removes the reference with a logged warning.
	DependencyPolicyPrune DependencyPolicy = "prune"
)

// Config holds the application configuration. It is read once at startup
// and treated as immutable afterwards.
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Backend configurations: the planning backend produces epic
	// structure, the expansion backend produces stories. The planning
	// backend doubles as the fallback when expansion fails.
	PlanningBackendCfg  BackendConfig `envPrefix:"PLANNING_"`
	ExpansionBackendCfg BackendConfig `envPrefix:"EXPANSION_"`

	// Pipeline configuration
	PipelineCfg PipelineConfig `envPrefix:"PIPELINE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration: replaces both backends with deterministic
	// canned responders. Used for local runs and demos.
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// BackendConfig configures one generative backend variant.
type BackendConfig struct {
	HTTPClientConfig
	APIKey      string  `env:"API_KEY"`
	Model       string  `env:"MODEL"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"8192"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0.5"`

	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// PipelineConfig tunes the generation workflow itself.
type PipelineConfig struct {
	// ExpansionConcurrency bounds parallel story expansion during full
	// backlog assembly. Protects against provider rate limits.
	ExpansionConcurrency int `env:"EXPANSION_CONCURRENCY" envDefault:"4"`

	// TargetEpicCountMin/Max bound the epic count requested from the
	// planning backend.
	TargetEpicCountMin int `env:"TARGET_EPIC_COUNT_MIN" envDefault:"6"`
	TargetEpicCountMax int `env:"TARGET_EPIC_COUNT_MAX" envDefault:"8"`

	// DependencyPolicy: "flag" keeps unresolved dependency references and
	// reports them, "prune" removes them.
	DependencyPolicy DependencyPolicy `env:"DEPENDENCY_POLICY" envDefault:"flag"`

	// ContextCacheTTL bounds how long a formatted transcript context is
	// memoized between the epic and story phases of a two-phase flow.
	ContextCacheTTL time.Duration `env:"CONTEXT_CACHE_TTL" envDefault:"10m"`
}

type HTTPClientConfig struct {
	BaseURL               string        `env:"BASE_URL"`
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"120s"`
}

// Defaults matching the hosted providers; overridable for proxies and
// compatible gateways.
const (
	defaultPlanningBaseURL  = "https://api.anthropic.com"
	defaultExpansionBaseURL = "https://api.openai.com"
	defaultPlanningModel    = "claude-sonnet-4-20250514"
	defaultExpansionModel   = "gpt-5"
)

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return loadConfig(*envFlag)
}

// LoadConfigForEnv is the flag-free variant used by the CLI, where cobra
// owns flag parsing.
func LoadConfigForEnv(environment string) (*Config, error) {
	return loadConfig(environment)
}

func loadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Missing env files are fine; in containerized environments the
	// variables are set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment
	applyBackendDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func applyBackendDefaults(cfg *Config) {
	if cfg.PlanningBackendCfg.BaseURL == "" {
		cfg.PlanningBackendCfg.BaseURL = defaultPlanningBaseURL
	}
	if cfg.ExpansionBackendCfg.BaseURL == "" {
		cfg.ExpansionBackendCfg.BaseURL = defaultExpansionBaseURL
	}
	if cfg.PlanningBackendCfg.Model == "" {
		cfg.PlanningBackendCfg.Model = defaultPlanningModel
	}
	if cfg.ExpansionBackendCfg.Model == "" {
		cfg.ExpansionBackendCfg.Model = defaultExpansionModel
	}
}

func validateConfig(cfg *Config) error {
	if !cfg.EnableMocks {
		if cfg.PlanningBackendCfg.APIKey == "" {
			return fmt.Errorf("PLANNING_API_KEY must be set (or ENABLE_MOCKS=true)")
		}
		if cfg.ExpansionBackendCfg.APIKey == "" {
			return fmt.Errorf("EXPANSION_API_KEY must be set (or ENABLE_MOCKS=true)")
		}
	}

	if cfg.PipelineCfg.ExpansionConcurrency < 1 || cfg.PipelineCfg.ExpansionConcurrency > 32 {
		return fmt.Errorf("PIPELINE_EXPANSION_CONCURRENCY must be between 1 and 32, got %d", cfg.PipelineCfg.ExpansionConcurrency)
	}

	if cfg.PipelineCfg.TargetEpicCountMin < 1 ||
		cfg.PipelineCfg.TargetEpicCountMax < cfg.PipelineCfg.TargetEpicCountMin {
		return fmt.Errorf("invalid target epic count range [%d, %d]",
			cfg.PipelineCfg.TargetEpicCountMin, cfg.PipelineCfg.TargetEpicCountMax)
	}

	switch cfg.PipelineCfg.DependencyPolicy {
	case DependencyPolicyFlag, DependencyPolicyPrune:
	default:
		return fmt.Errorf("PIPELINE_DEPENDENCY_POLICY must be %q or %q, got %q",
			DependencyPolicyFlag, DependencyPolicyPrune, cfg.PipelineCfg.DependencyPolicy)
	}

	for _, bc := range []struct {
		name string
		cfg  *BackendConfig
	}{
		{"planning", &cfg.PlanningBackendCfg},
		{"expansion", &cfg.ExpansionBackendCfg},
	} {
		if bc.cfg.MaxTokens < 256 {
			return fmt.Errorf("%s backend MAX_TOKENS must be at least 256, got %d", bc.name, bc.cfg.MaxTokens)
		}
		if bc.cfg.Temperature < 0 || bc.cfg.Temperature > 2 {
			return fmt.Errorf("%s backend TEMPERATURE must be in [0, 2], got %g", bc.name, bc.cfg.Temperature)
		}
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
