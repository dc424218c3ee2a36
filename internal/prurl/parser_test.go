package prurl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/prurl"
)

func TestParse_ValidURLs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.PullRequestRef
	}{
		{
			name:     "standard https URL",
			input:    "https://github.com/acme/widgets/pull/7",
			expected: domain.PullRequestRef{Repository: "acme/widgets", Number: 7},
		},
		{
			name:     "trailing slash",
			input:    "https://github.com/acme/widgets/pull/42/",
			expected: domain.PullRequestRef{Repository: "acme/widgets", Number: 42},
		},
		{
			name:     "path only",
			input:    "github.com/octo/kit/pull/1234",
			expected: domain.PullRequestRef{Repository: "octo/kit", Number: 1234},
		},
		{
			name:     "hyphenated owner and repo",
			input:    "https://github.com/my-org/my-repo/pull/9",
			expected: domain.PullRequestRef{Repository: "my-org/my-repo", Number: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := prurl.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestParse_InvalidURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not a URL", input: "bad-url"},
		{name: "too few segments", input: "github.com/pull/5"},
		{name: "non-numeric trailing segment", input: "https://github.com/acme/widgets/pull/abc"},
		{name: "empty string", input: ""},
		{name: "only slashes", input: "///"},
		{name: "zero PR number", input: "https://github.com/acme/widgets/pull/0"},
		{name: "negative PR number", input: "https://github.com/acme/widgets/pull/-3"},
		{name: "empty repository segments", input: "https://////pull/5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prurl.Parse(tt.input)
			require.Error(t, err)

			var invalidErr *prurl.InvalidURLError
			require.True(t, errors.As(err, &invalidErr), "expected *InvalidURLError, got %T", err)
			assert.Equal(t, tt.input, invalidErr.Input)
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	const input = "https://github.com/acme/widgets/pull/42"

	first, err := prurl.Parse(input)
	require.NoError(t, err)
	second, err := prurl.Parse(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
