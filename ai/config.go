// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Provider names accepted by configuration and per-request overrides.
const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Provider is the preferred generative provider name. Empty means
	// auto-detect by available credential.
	Provider string

	// API keys. A provider is only usable when its key is set.
	DeepSeekAPIKey string
	GeminiAPIKey   string
	OpenAIAPIKey   string

	// Chat model identifiers per provider.
	DeepSeekModel string
	GeminiModel   string
	OpenAIModel   string

	// DeepSeekHost is the base URL for the DeepSeek OpenAI-compatible API.
	DeepSeekHost string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible
	// server.
	EmbeddingHost string

	// EmbeddingAPIKey authenticates against the embedding service.
	// Local services typically accept any value.
	EmbeddingAPIKey string

	// EmbeddingModel is the model identifier for text embeddings.
	EmbeddingModel string

	// Per-call-kind timeouts. Intent parsing is a short structured call,
	// answer generation may run long, embedding sits in between.
	IntentTimeout time.Duration
	AnswerTimeout time.Duration
	EmbedTimeout  time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the preferred generative provider name.
func WithProvider(name string) ConfigOption {
	return func(c *Config) {
		c.Provider = name
	}
}

// WithDeepSeekKey sets the DeepSeek API key.
func WithDeepSeekKey(key string) ConfigOption {
	return func(c *Config) {
		c.DeepSeekAPIKey = key
	}
}

// WithGeminiKey sets the Gemini API key.
func WithGeminiKey(key string) ConfigOption {
	return func(c *Config) {
		c.GeminiAPIKey = key
	}
}

// WithOpenAIKey sets the OpenAI API key.
func WithOpenAIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIAPIKey = key
	}
}

// WithDeepSeekModel sets the DeepSeek chat model identifier.
func WithDeepSeekModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.DeepSeekModel = model
		}
	}
}

// WithGeminiModel sets the Gemini chat model identifier.
func WithGeminiModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.GeminiModel = model
		}
	}
}

// WithOpenAIModel sets the OpenAI chat model identifier.
func WithOpenAIModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.OpenAIModel = model
		}
	}
}

// WithDeepSeekHost sets the base URL for the DeepSeek API.
func WithDeepSeekHost(host string) ConfigOption {
	return func(c *Config) {
		if host != "" {
			c.DeepSeekHost = host
		}
	}
}

// WithEmbeddingKey sets the embedding service API key.
func WithEmbeddingKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingAPIKey = key
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTimeouts sets the per-call-kind timeouts. Zero values keep defaults.
func WithTimeouts(intent, answer, embed time.Duration) ConfigOption {
	return func(c *Config) {
		if intent > 0 {
			c.IntentTimeout = intent
		}
		if answer > 0 {
			c.AnswerTimeout = answer
		}
		if embed > 0 {
			c.EmbedTimeout = embed
		}
	}
}

// DefaultConfig returns a Config with sensible defaults. Providers remain
// unusable until a key is supplied.
func DefaultConfig() *Config {
	return &Config{
		DeepSeekModel:  "deepseek-chat",
		GeminiModel:    "gemini-2.0-flash",
		OpenAIModel:    "gpt-4o-mini",
		DeepSeekHost:   "https://api.deepseek.com/v1",
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "bge-m3",
		IntentTimeout:  30 * time.Second,
		AnswerTimeout:  120 * time.Second,
		EmbedTimeout:   60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form: provider
// names are lowercased and hosts carry the /v1 suffix required by
// OpenAI-compatible APIs.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.DeepSeekHost = normalizeHost(c.DeepSeekHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case "", ProviderDeepSeek, ProviderGemini, ProviderOpenAI:
	default:
		return errors.New("ai config: unknown Provider " + c.Provider)
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.IntentTimeout <= 0 || c.AnswerTimeout <= 0 || c.EmbedTimeout <= 0 {
		return errors.New("ai config: timeouts must be positive")
	}
	return nil
}
