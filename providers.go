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


package brainlog

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/ai/googleai"
	"github.com/poiesic/brainlog/ai/openai"
)

// SelectGenerator builds the generative backend for the configuration.
// A non-empty override wins, then the configured provider; both must have
// their credential. With neither set the first available credential wins,
// in priority order DeepSeek, Gemini, OpenAI. Returns ai.ErrNoProvider
// when no usable credential exists.
func SelectGenerator(ctx context.Context, cfg *ai.Config, override string) (ai.Generator, error) {
	cfg.Normalize()

	name := strings.ToLower(strings.TrimSpace(override))
	if name == "" {
		name = cfg.Provider
	}
	if name == "" {
		switch {
		case cfg.DeepSeekAPIKey != "":
			name = ai.ProviderDeepSeek
		case cfg.GeminiAPIKey != "":
			name = ai.ProviderGemini
		case cfg.OpenAIAPIKey != "":
			name = ai.ProviderOpenAI
		default:
			return nil, ai.ErrNoProvider
		}
	}

	switch name {
	case ai.ProviderDeepSeek:
		return openai.NewGenerator("DeepSeek", cfg.DeepSeekHost, cfg.DeepSeekAPIKey, cfg.DeepSeekModel)
	case ai.ProviderGemini:
		return googleai.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ai.ProviderOpenAI:
		return openai.NewGenerator("OpenAI", "", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("%w: %s", ai.ErrUnknownProvider, name)
	}
}

// NewEmbedder builds the embedding backend for the configuration.
func NewEmbedder(cfg *ai.Config) ai.Embedder {
	cfg.Normalize()
	return openai.NewEmbedder(cfg.EmbeddingHost, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
}
