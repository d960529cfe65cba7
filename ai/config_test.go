package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.Provider)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeekModel)
	assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
	assert.Greater(t, cfg.AnswerTimeout, cfg.IntentTimeout)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithProvider("Gemini"),
		WithGeminiKey("k"),
		WithEmbeddingHost("http://localhost:9100"),
		WithTimeouts(5*time.Second, 0, 10*time.Second),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "k", cfg.GeminiAPIKey)
	// Host normalized with /v1 suffix
	assert.Equal(t, "http://localhost:9100/v1", cfg.EmbeddingHost)
	assert.Equal(t, 5*time.Second, cfg.IntentTimeout)
	// Zero keeps the default
	assert.Equal(t, 120*time.Second, cfg.AnswerTimeout)
	assert.Equal(t, 10*time.Second, cfg.EmbedTimeout)
}

func TestConfigValidate(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider("claude"))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModel = ""
		assert.Error(t, cfg.Validate())
	})
}
