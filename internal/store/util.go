package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateSessionID creates a unique, time-ordered session ID.
// Format: session-<timestamp>-<hash>
// Example: session-20251021T143052Z-a3f9c2
func GenerateSessionID(startedAt time.Time, repository string, number int) string {
	// Use UTC timestamp in ISO format for consistent ordering
	ts := startedAt.UTC().Format("20060102T150405Z")

	// Short hash from the PR ref and nanoseconds for uniqueness
	input := fmt.Sprintf("%s|%d|%d", repository, number, startedAt.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("session-%s-%s", ts, shortHash)
}
