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


package openai

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/brainlog/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder against any OpenAI-compatible embedding
// endpoint (Ollama, vLLM, the OpenAI API itself). The underlying client is
// created lazily on first use so constructing an Embedder never touches the
// network.
type Embedder struct {
	host   string
	apiKey string
	model  string
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
	client   *embeddings.EmbedderImpl
}

// NewEmbedder creates an Embedder for the given OpenAI-compatible endpoint.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(host, apiKey, model string) ai.Embedder {
	return &Embedder{
		host:   host,
		apiKey: apiKey,
		model:  model,
		logger: slog.Default().With("component", "openai-embedder", "model", model),
	}
}

func (e *Embedder) init() error {
	e.initOnce.Do(func() {
		// Local servers ignore the token but the client requires one.
		apiKey := e.apiKey
		if apiKey == "" {
			apiKey = "unused"
		}

		client, err := openai.New(
			openai.WithBaseURL(e.host),
			openai.WithToken(apiKey),
			openai.WithEmbeddingModel(e.model),
		)
		if err != nil {
			e.initErr = err
			return
		}

		e.client, e.initErr = embeddings.NewEmbedder(client,
			embeddings.WithStripNewLines(true))
	})
	return e.initErr
}

// EmbedText generates a single embedding vector for the text. Texts longer
// than the model input window are chunked and the chunk vectors mean-pooled
// into one.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}

	chunks := chunkText(text)
	vectors, err := e.client.EmbedDocuments(ctx, chunks)
	if err != nil {
		e.logger.Error("embedding failed", "chunks", len(chunks), "err", err)
		return nil, err
	}
	return meanPool(vectors), nil
}

// EmbedTexts generates one embedding vector per input text.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		chunks := chunkText(text)
		vectors, err := e.client.EmbedDocuments(ctx, chunks)
		if err != nil {
			e.logger.Error("embedding failed", "index", i, "chunks", len(chunks), "err", err)
			return nil, err
		}
		results[i] = meanPool(vectors)
	}
	return results, nil
}
