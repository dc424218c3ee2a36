package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to include in logs.
	// Responses longer than this are truncated to prevent logging sensitive data.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging purposes.
// This prevents logging of potentially sensitive user data (source code, PR
// bodies, secrets) to log aggregators while still providing enough context
// for debugging.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

// sensitiveQueryParams are URL query parameter names whose values must never
// reach logs or error messages. The Gemini API carries its key in the URL.
var sensitiveQueryParams = []string{
	"key",
	"apiKey",
	"api_key",
	"token",
	"access_token",
}

var sensitiveParamPatterns = buildParamPatterns()

func buildParamPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(sensitiveQueryParams))
	for _, name := range sensitiveQueryParams {
		patterns[name] = regexp.MustCompile(name + `=([^&"\s]+)`)
	}
	return patterns
}

// RedactURLSecrets redacts API keys and other secrets from URLs in error
// messages. This prevents keys from being exposed when URLs with query
// parameters (like Gemini's ?key= parameter) appear in error output.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?key=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for name, re := range sensitiveParamPatterns {
		result = re.ReplaceAllString(result, name+"=[REDACTED]")
	}
	return result
}
