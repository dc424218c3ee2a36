package observability_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
	"github.com/bkyoung/pr-guardian/internal/adapter/observability"
)

func TestNewSessionLogger(t *testing.T) {
	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	sessionLogger := observability.NewSessionLogger(llmLogger)

	require.NotNil(t, sessionLogger)
}

func TestSessionLogger_LogWarning(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	sessionLogger := observability.NewSessionLogger(llmLogger)

	ctx := context.Background()
	sessionLogger.LogWarning(ctx, "session failed", map[string]interface{}{
		"kind":  "analysis",
		"error": "Agent run failed. Final state: failed",
	})

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "session failed")
	assert.Contains(t, output, "kind=analysis")
}

func TestSessionLogger_LogInfo(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	sessionLogger := observability.NewSessionLogger(llmLogger)

	ctx := context.Background()
	sessionLogger.LogInfo(ctx, "comment posted", map[string]interface{}{
		"pr": "acme/widgets#7",
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "comment posted")
	assert.Contains(t, output, "pr=acme/widgets#7")
}
