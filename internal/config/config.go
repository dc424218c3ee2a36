package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the full application configuration.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	AgentPlatform AgentPlatformConfig `yaml:"agentPlatform"`
	GitHub        GitHubConfig        `yaml:"github"`
	HTTP          HTTPConfig          `yaml:"http"`
	Agent         AgentConfig         `yaml:"agent"`
	Server        ServerConfig        `yaml:"server"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LLMConfig configures the model that drafts review comments.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// AgentPlatformConfig configures the agent orchestration platform.
// Its key is validated at startup alongside the other credentials so a
// misconfigured environment fails before the first review, not during it.
type AgentPlatformConfig struct {
	APIKey string `yaml:"apiKey"`
}

// GitHubConfig configures access to the GitHub REST API.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"baseURL"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

// AgentConfig configures the tool-calling loop.
type AgentConfig struct {
	MaxIterations int `yaml:"maxIterations"`
}

// ServerConfig configures the web shell.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// StoreConfig configures the session history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging and metrics.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// MetricsConfig configures performance metrics tracking.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ParseTimeout returns the HTTP timeout as a duration, falling back to 60s
// when the value is empty or malformed.
func (h HTTPConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Validate checks that every credential the workflow depends on is present.
// All missing credentials are reported together.
func (c Config) Validate() error {
	var missing []string
	if c.LLM.APIKey == "" {
		missing = append(missing, "llm.apiKey")
	}
	if c.AgentPlatform.APIKey == "" {
		missing = append(missing, "agentPlatform.apiKey")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "github.token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}

	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("agent.maxIterations must not be negative, got %d", c.Agent.MaxIterations)
	}

	return nil
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.LLM = chooseLLM(base.LLM, overlay.LLM)
	result.AgentPlatform = chooseAgentPlatform(base.AgentPlatform, overlay.AgentPlatform)
	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Agent = chooseAgent(base.Agent, overlay.Agent)
	result.Server = chooseServer(base.Server, overlay.Server)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseLLM(base, overlay LLMConfig) LLMConfig {
	result := base
	if overlay.Provider != "" {
		result.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	return result
}

func chooseAgentPlatform(base, overlay AgentPlatformConfig) AgentPlatformConfig {
	if overlay.APIKey != "" {
		return overlay
	}
	return base
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	result := base
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.BaseURL != "" {
		result.BaseURL = overlay.BaseURL
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" {
		return overlay
	}
	return base
}

func chooseAgent(base, overlay AgentConfig) AgentConfig {
	if overlay.MaxIterations != 0 {
		return overlay
	}
	return base
}

func chooseServer(base, overlay ServerConfig) ServerConfig {
	if overlay.ListenAddr != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base

	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}

	if overlay.Metrics.Enabled {
		result.Metrics = overlay.Metrics
	}

	return result
}
