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


// Package config loads application configuration from a YAML file with
// environment variable overrides. API keys are taken from the environment
// only, never from the file, so a committed config never leaks credentials.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/poiesic/brainlog/ai"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig configures the badger-backed log store.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// AIConfig configures model providers. Credentials come from the
// environment (DEEPSEEK_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY,
// EMBEDDING_API_KEY), not from the file.
type AIConfig struct {
	Provider       string `yaml:"provider"`
	DeepSeekModel  string `yaml:"deepseek_model"`
	GeminiModel    string `yaml:"gemini_model"`
	OpenAIModel    string `yaml:"openai_model"`
	DeepSeekHost   string `yaml:"deepseek_host"`
	EmbeddingHost  string `yaml:"embedding_host"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
}

// LoadEnvFiles loads .env.local and .env into the process environment if
// they exist. Already-set variables are never overridden.
func LoadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// Load reads a config from the specified path. A missing file yields
// defaults; environment variables override the file either way.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDefault tries ./brainlog.yaml first, then ~/.config/brainlog/config.yaml.
// If neither exists, defaults apply.
func LoadDefault() (*AppConfig, error) {
	if _, err := os.Stat("brainlog.yaml"); err == nil {
		return Load("brainlog.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return Load(filepath.Join(home, ".config", "brainlog", "config.yaml"))
	}
	return Load("brainlog.yaml")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8170"
	}
	if cfg.Storage.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Storage.Path = filepath.Join(home, ".brainlog", "logs")
		} else {
			cfg.Storage.Path = "brainlog-data"
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	overrideString(&cfg.Server.Addr, "BRAINLOG_ADDR")
	overrideString(&cfg.Storage.Path, "BRAINLOG_DB_PATH")
	overrideString(&cfg.AI.Provider, "BRAINLOG_PROVIDER")
	overrideString(&cfg.AI.EmbeddingHost, "EMBEDDING_HOST")
	overrideString(&cfg.AI.EmbeddingModel, "EMBEDDING_MODEL")
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

// AIOptions converts the file-level AI section plus environment
// credentials into ai.Config options. Empty values keep the ai package
// defaults.
func (cfg *AppConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithDeepSeekKey(os.Getenv("DEEPSEEK_API_KEY")),
		ai.WithGeminiKey(os.Getenv("GEMINI_API_KEY")),
		ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
		ai.WithEmbeddingKey(os.Getenv("EMBEDDING_API_KEY")),
		ai.WithDeepSeekModel(cfg.AI.DeepSeekModel),
		ai.WithGeminiModel(cfg.AI.GeminiModel),
		ai.WithOpenAIModel(cfg.AI.OpenAIModel),
		ai.WithDeepSeekHost(cfg.AI.DeepSeekHost),
	}
	if cfg.AI.Provider != "" {
		opts = append(opts, ai.WithProvider(cfg.AI.Provider))
	}
	if cfg.AI.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(cfg.AI.EmbeddingHost))
	}
	if cfg.AI.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(cfg.AI.EmbeddingModel))
	}
	return opts
}
