package agent

import (
	"fmt"
	"strings"
)

// SystemPrompt generates the system prompt advertising the available tools
// and the tool invocation protocol.
func SystemPrompt(tools []Tool) string {
	var sb strings.Builder

	sb.WriteString(`You are PR Guardian, an assistant that reviews GitHub pull requests.

You are given a task and a set of tools. Work step by step: invoke tools to
gather information or take actions, then finish with your final output.

## Available Tools
`)

	for _, tool := range tools {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", tool.Name(), tool.Description()))
	}

	sb.WriteString(`
## Tool Usage
To use a tool, respond with ONLY:

TOOL: tool_name
INPUT: {"repository": "owner/name", "number": 42}

The INPUT must be a single-line JSON object. You will receive the tool result
and can then continue.

## Final Output
When the task is complete, respond with the final output text alone, with no
TOOL line. Your final response is delivered verbatim, so include nothing
except what the task asks for.`)

	return sb.String()
}

// ToolResultPrompt builds the follow-up prompt carrying a tool's result back
// to the model.
func ToolResultPrompt(toolName, input, output string) string {
	return fmt.Sprintf(`Result of %s with input %s:

%s

Continue the task. Invoke another tool if needed, or provide your final output.`, toolName, input, output)
}
