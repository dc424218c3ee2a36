package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bkyoung/pr-guardian/internal/adapter/agent"
	"github.com/bkyoung/pr-guardian/internal/adapter/cli"
	githubadapter "github.com/bkyoung/pr-guardian/internal/adapter/github"
	"github.com/bkyoung/pr-guardian/internal/adapter/llm/gemini"
	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
	"github.com/bkyoung/pr-guardian/internal/adapter/observability"
	storeAdapter "github.com/bkyoung/pr-guardian/internal/adapter/store"
	"github.com/bkyoung/pr-guardian/internal/adapter/store/sqlite"
	"github.com/bkyoung/pr-guardian/internal/adapter/web"
	"github.com/bkyoung/pr-guardian/internal/config"
	"github.com/bkyoung/pr-guardian/internal/store"
	"github.com/bkyoung/pr-guardian/internal/usecase/gateway"
	"github.com/bkyoung/pr-guardian/internal/usecase/session"
	"github.com/bkyoung/pr-guardian/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "guardian",
		EnvPrefix:   "GUARDIAN",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	obs := buildObservability(cfg.Observability)
	timeout := cfg.HTTP.ParseTimeout()

	llmClient := gemini.NewHTTPClient(cfg.LLM.APIKey, cfg.LLM.Model, timeout)
	if obs.logger != nil {
		llmClient.SetLogger(obs.logger)
	}
	if obs.metrics != nil {
		llmClient.SetMetrics(obs.metrics)
	}

	githubClient := githubadapter.NewClient(cfg.GitHub.Token, timeout)
	if cfg.GitHub.BaseURL != "" {
		githubClient.SetBaseURL(cfg.GitHub.BaseURL)
	}
	gw := gateway.New(githubClient, cfg.GitHub.Token != "")

	executor := agent.NewExecutor(llmClient, agent.NewToolRegistry(gw), cfg.Agent.MaxIterations)
	if obs.logger != nil {
		executor.SetLogger(obs.logger)
	}

	manager := session.NewManager(executor)
	if obs.logger != nil {
		manager.SetLogger(observability.NewSessionLogger(obs.logger))
	}

	// Initialize session history if enabled
	var history store.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				history = sqliteStore
				manager.SetStore(storeAdapter.NewRecorder(sqliteStore))
				defer sqliteStore.Close()
			}
		}
	}

	webLogger := observability.NewZerologLogger(cfg.Observability.Logging.Level)
	server := web.NewServer(webLogger, manager, history)

	root := cli.NewRootCommand(cli.Dependencies{
		Manager:           manager,
		Server:            server,
		History:           history,
		DefaultListenAddr: cfg.Server.ListenAddr,
		Version:           version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "guardian"))
	}
	return paths
}

// observabilityComponents holds shared observability instances
type observabilityComponents struct {
	logger  llmhttp.Logger
	metrics llmhttp.Metrics
}

// buildObservability creates observability components based on configuration
func buildObservability(cfg config.ObservabilityConfig) observabilityComponents {
	var logger llmhttp.Logger
	var metrics llmhttp.Metrics

	if cfg.Logging.Enabled {
		logLevel := llmhttp.LogLevelInfo
		switch cfg.Logging.Level {
		case "debug":
			logLevel = llmhttp.LogLevelDebug
		case "error":
			logLevel = llmhttp.LogLevelError
		}

		logFormat := llmhttp.LogFormatHuman
		if cfg.Logging.Format == "json" {
			logFormat = llmhttp.LogFormatJSON
		}

		logger = llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactAPIKeys)
	}

	if cfg.Metrics.Enabled {
		metrics = llmhttp.NewDefaultMetrics()
	}

	return observabilityComponents{
		logger:  logger,
		metrics: metrics,
	}
}

// Compile-time interface compliance checks
var _ session.Executor = (*agent.Executor)(nil)
var _ agent.LLMClient = (*gemini.HTTPClient)(nil)
var _ gateway.Client = (*githubadapter.Client)(nil)
var _ cli.Manager = (*session.Manager)(nil)
var _ web.Manager = (*session.Manager)(nil)
var _ store.Store = (*sqlite.Store)(nil)
var _ session.Store = (*storeAdapter.Recorder)(nil)
