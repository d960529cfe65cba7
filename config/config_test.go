package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/brainlog/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)

		assert.Equal(t, ":8170", cfg.Server.Addr)
		assert.NotEmpty(t, cfg.Storage.Path)
		assert.False(t, cfg.Storage.InMemory)
	})

	t.Run("file values applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9999"
storage:
  path: /tmp/test-logs
ai:
  provider: deepseek
  embedding_model: nomic-embed-text
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.Server.Addr)
		assert.Equal(t, "/tmp/test-logs", cfg.Storage.Path)
		assert.Equal(t, "deepseek", cfg.AI.Provider)
		assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o600))

		t.Setenv("BRAINLOG_ADDR", ":7777")
		t.Setenv("BRAINLOG_PROVIDER", "gemini")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":7777", cfg.Server.Addr)
		assert.Equal(t, "gemini", cfg.AI.Provider)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestAIOptions(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EMBEDDING_API_KEY", "")

	cfg := &AppConfig{}
	cfg.AI.Provider = "deepseek"
	cfg.AI.DeepSeekModel = "deepseek-reasoner"
	cfg.AI.EmbeddingHost = "http://localhost:9100"

	aiCfg := ai.NewConfig(cfg.AIOptions()...)
	require.NoError(t, aiCfg.Validate())

	assert.Equal(t, ai.ProviderDeepSeek, aiCfg.Provider)
	assert.Equal(t, "ds-key", aiCfg.DeepSeekAPIKey)
	assert.Equal(t, "deepseek-reasoner", aiCfg.DeepSeekModel)
	assert.Equal(t, "http://localhost:9100/v1", aiCfg.EmbeddingHost)
	// Unset sections keep defaults.
	assert.Equal(t, "bge-m3", aiCfg.EmbeddingModel)
}
