package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		LLM:           LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash", APIKey: "llm-key"},
		AgentPlatform: AgentPlatformConfig{APIKey: "platform-key"},
		GitHub:        GitHubConfig{Token: "gh-token"},
	}
}

func TestValidate_AllCredentialsPresent(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{
			name:   "missing llm key",
			mutate: func(c *Config) { c.LLM.APIKey = "" },
			want:   []string{"llm.apiKey"},
		},
		{
			name:   "missing platform key",
			mutate: func(c *Config) { c.AgentPlatform.APIKey = "" },
			want:   []string{"agentPlatform.apiKey"},
		},
		{
			name:   "missing github token",
			mutate: func(c *Config) { c.GitHub.Token = "" },
			want:   []string{"github.token"},
		},
		{
			name: "all missing reported together",
			mutate: func(c *Config) {
				c.LLM.APIKey = ""
				c.AgentPlatform.APIKey = ""
				c.GitHub.Token = ""
			},
			want: []string{"llm.apiKey", "agentPlatform.apiKey", "github.token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			for _, field := range tt.want {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestValidate_NegativeMaxIterations(t *testing.T) {
	cfg := validConfig()
	cfg.Agent.MaxIterations = -1
	assert.Error(t, cfg.Validate())
}

func TestParseTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, HTTPConfig{Timeout: "30s"}.ParseTimeout())
	assert.Equal(t, 60*time.Second, HTTPConfig{}.ParseTimeout())
	assert.Equal(t, 60*time.Second, HTTPConfig{Timeout: "not-a-duration"}.ParseTimeout())
	assert.Equal(t, 60*time.Second, HTTPConfig{Timeout: "-5s"}.ParseTimeout())
}

func TestMerge_OverlayWins(t *testing.T) {
	base := Config{
		LLM:    LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash", APIKey: "base-key"},
		GitHub: GitHubConfig{Token: "base-token"},
		Server: ServerConfig{ListenAddr: ":8080"},
	}
	overlay := Config{
		LLM:    LLMConfig{Model: "gemini-1.5-pro"},
		GitHub: GitHubConfig{BaseURL: "https://github.example.com/api/v3"},
	}

	merged := Merge(base, overlay)

	assert.Equal(t, "gemini", merged.LLM.Provider, "base survives where overlay is empty")
	assert.Equal(t, "gemini-1.5-pro", merged.LLM.Model)
	assert.Equal(t, "base-key", merged.LLM.APIKey)
	assert.Equal(t, "base-token", merged.GitHub.Token)
	assert.Equal(t, "https://github.example.com/api/v3", merged.GitHub.BaseURL)
	assert.Equal(t, ":8080", merged.Server.ListenAddr)
}

func TestMerge_StoreAndObservability(t *testing.T) {
	base := Config{
		Store: StoreConfig{Enabled: true, Path: "/base.db"},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Enabled: true, Level: "info", Format: "human"},
		},
	}
	overlay := Config{
		Store: StoreConfig{Enabled: true, Path: "/overlay.db"},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Enabled: true, Level: "debug", Format: "json"},
			Metrics: MetricsConfig{Enabled: true},
		},
	}

	merged := Merge(base, overlay)

	assert.Equal(t, "/overlay.db", merged.Store.Path)
	assert.Equal(t, "debug", merged.Observability.Logging.Level)
	assert.True(t, merged.Observability.Metrics.Enabled)
}
