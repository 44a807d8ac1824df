package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RAG_FAQ_THRESHOLD", "")
	t.Setenv("LLM_MAX_TOKENS", "")

	cfg := Load()

	assert.Equal(t, 0.85, cfg.Rag.FAQThreshold)
	assert.Equal(t, 15, cfg.Rag.FAQTopK)
	assert.Equal(t, 15000, cfg.Rag.ContextBudget)
	assert.Equal(t, 6, cfg.Rag.HistoryLimit)
	assert.Equal(t, 512, cfg.Ai.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Ai.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RAG_FAQ_THRESHOLD", "0.9")
	t.Setenv("AI_REQUEST_TIMEOUT", "15s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("GO_ENV", "production")
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 0.9, cfg.Rag.FAQThreshold)
	assert.Equal(t, 15*time.Second, cfg.Ai.RequestTimeout)
	assert.Equal(t, "redis", cfg.App.SessionStore)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 512, cfg.Ai.MaxTokens, "unparsable values fall back")
}
