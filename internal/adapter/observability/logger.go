package observability

import (
	"context"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
	"github.com/bkyoung/pr-guardian/internal/usecase/session"
)

// SessionLogger adapts llmhttp.Logger to the session.Logger interface.
// This allows the session manager to use the same structured logging
// infrastructure as the LLM HTTP clients.
type SessionLogger struct {
	logger llmhttp.Logger
}

// NewSessionLogger creates a new session logger adapter.
func NewSessionLogger(logger llmhttp.Logger) session.Logger {
	return &SessionLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *SessionLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *SessionLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
