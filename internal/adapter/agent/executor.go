package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/pr-guardian/internal/adapter/llm/gemini"
	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
	"github.com/bkyoung/pr-guardian/internal/domain"
)

// LLMClient defines the interface for LLM interactions.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*gemini.APIResponse, error)
}

// DefaultMaxIterations bounds the number of LLM round trips per run.
const DefaultMaxIterations = 8

// Executor runs natural-language tasks against an LLM with the gateway
// tools. A run is a single blocking call from the caller's point of view:
// the executor internally decides which tools to invoke and when.
type Executor struct {
	llm           LLMClient
	tools         []Tool
	toolMap       map[string]Tool
	maxIterations int
	logger        llmhttp.Logger
}

// NewExecutor creates an executor with the given LLM client and tools.
// maxIterations <= 0 falls back to DefaultMaxIterations.
func NewExecutor(llm LLMClient, tools []Tool, maxIterations int) *Executor {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	toolMap := make(map[string]Tool, len(tools))
	for _, t := range tools {
		toolMap[t.Name()] = t
	}
	return &Executor{
		llm:           llm,
		tools:         tools,
		toolMap:       toolMap,
		maxIterations: maxIterations,
	}
}

// SetLogger sets the logger for tool-loop events.
func (e *Executor) SetLogger(logger llmhttp.Logger) {
	e.logger = logger
}

// Run executes the task to completion. The first model response that is not
// a tool invocation is the final output. Transport failures are returned as
// errors; a run that exhausts its iteration budget without producing a final
// output comes back as a failed result.
func (e *Executor) Run(ctx context.Context, task string) (domain.RunResult, error) {
	systemPrompt := SystemPrompt(e.tools)
	userPrompt := task

	for i := 0; i < e.maxIterations; i++ {
		if ctx.Err() != nil {
			return domain.RunResult{}, ctx.Err()
		}

		resp, err := e.llm.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("llm call: %w", err)
		}

		toolName, toolInput, ok := parseToolCall(resp.Text)
		if !ok {
			output := strings.TrimSpace(resp.Text)
			return domain.CompleteResult(output), nil
		}

		tool, exists := e.toolMap[toolName]
		if !exists {
			userPrompt = fmt.Sprintf("Unknown tool: %s. Available tools: %s", toolName, strings.Join(e.toolNames(), ", "))
			continue
		}

		output, err := tool.Execute(ctx, toolInput)
		if err != nil {
			output = fmt.Sprintf("Error: %v", err)
		}

		if e.logger != nil {
			e.logger.LogInfo(ctx, "tool executed", map[string]interface{}{
				"tool":   toolName,
				"output": llmhttp.TruncateForLogging(output),
			})
		}

		userPrompt = ToolResultPrompt(toolName, toolInput, output)
	}

	if e.logger != nil {
		e.logger.LogWarning(ctx, "run exhausted iteration budget", map[string]interface{}{
			"max_iterations": e.maxIterations,
		})
	}
	return domain.FailedResult(), nil
}

// toolCallPattern matches tool invocations like:
//
//	TOOL: get_pr_details_and_diff
//	INPUT: {"repository": "acme/widgets", "number": 7}
var toolCallPattern = regexp.MustCompile(`(?s)TOOL:\s*(\w+)\s*\nINPUT:\s*(.+?)(?:\n|$)`)

// parseToolCall attempts to extract a tool call from the response.
func parseToolCall(response string) (toolName, input string, ok bool) {
	matches := toolCallPattern.FindStringSubmatch(response)
	if len(matches) >= 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2]), true
	}
	return "", "", false
}

// toolNames returns the list of available tool names.
func (e *Executor) toolNames() []string {
	names := make([]string, len(e.tools))
	for i, t := range e.tools {
		names[i] = t.Name()
	}
	return names
}
