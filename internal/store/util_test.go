package store_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/pr-guardian/internal/store"
)

func TestGenerateSessionID_Format(t *testing.T) {
	ts := time.Date(2025, 10, 21, 14, 30, 52, 0, time.UTC)
	id := store.GenerateSessionID(ts, "acme/widgets", 7)

	assert.True(t, strings.HasPrefix(id, "session-20251021T143052Z-"))
	parts := strings.Split(id, "-")
	assert.Len(t, parts[len(parts)-1], 6, "short hash is 6 hex characters")
}

func TestGenerateSessionID_Unique(t *testing.T) {
	a := store.GenerateSessionID(time.Now(), "acme/widgets", 7)
	b := store.GenerateSessionID(time.Now(), "acme/widgets", 7)
	assert.NotEqual(t, a, b)
}

func TestGenerateSessionID_TimeOrdered(t *testing.T) {
	earlier := store.GenerateSessionID(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "a/b", 1)
	later := store.GenerateSessionID(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "a/b", 1)
	assert.Less(t, earlier, later)
}
