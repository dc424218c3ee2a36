package http_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
)

func TestDefaultMetrics_RecordsAggregates(t *testing.T) {
	m := llmhttp.NewDefaultMetrics()

	m.RecordRequest("gemini", "gemini-2.0-flash")
	m.RecordRequest("github", "")
	m.RecordTokens("gemini", "gemini-2.0-flash", 100, 40)
	m.RecordDuration("gemini", "gemini-2.0-flash", 2*time.Second)
	m.RecordError("github", "", llmhttp.ErrTypeRateLimit)

	stats := m.GetStats()

	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 100, stats.TotalTokensIn)
	assert.Equal(t, 40, stats.TotalTokensOut)
	assert.Equal(t, 2*time.Second, stats.TotalDuration)
	assert.Equal(t, 1, stats.ErrorCount)

	assert.Equal(t, 1, stats.ByProvider["gemini"].Requests)
	assert.Equal(t, 1, stats.ByProvider["github"].Errors)
}

func TestDefaultMetrics_ConcurrentAccess(t *testing.T) {
	m := llmhttp.NewDefaultMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest("gemini", "model")
			m.RecordTokens("gemini", "model", 1, 1)
			_ = m.GetStats()
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	assert.Equal(t, 50, stats.TotalRequests)
	assert.Equal(t, 50, stats.TotalTokensIn)
}

func TestDefaultMetrics_GetStatsReturnsCopy(t *testing.T) {
	m := llmhttp.NewDefaultMetrics()
	m.RecordRequest("gemini", "model")

	stats := m.GetStats()
	stats.ByProvider["gemini"] = llmhttp.ProviderStats{Requests: 999}

	assert.Equal(t, 1, m.GetStats().ByProvider["gemini"].Requests)
}
