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
	"iter"
	"log/slog"

	"github.com/poiesic/brainlog/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
// With a custom host it also serves DeepSeek and local OpenAI-compatible
// servers.
type Generator struct {
	client *openai.LLM
	name   string
	logger *slog.Logger
}

// NewGenerator creates a Generator for an OpenAI-compatible chat API.
// name is the display name reported by Name(); host may be empty for the
// default OpenAI endpoint.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(name, host, apiKey, model string) (ai.Generator, error) {
	if apiKey == "" {
		return nil, ai.ErrNoProvider
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if host != "" {
		opts = append(opts, openai.WithBaseURL(host))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		name:   name,
		logger: slog.Default().With("component", "openai-generator", "provider", name),
	}, nil
}

// Name identifies the backing provider.
func (g *Generator) Name() string {
	return g.name
}

// Generate produces a complete response for the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt,
		llms.WithTemperature(temperature))
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return "", err
	}
	if response == "" {
		return "", ai.ErrEmptyResponse
	}
	return response, nil
}

// GenerateStream produces the response as an ordered sequence of fragments.
// Breaking out of the iteration cancels the underlying call.
func (g *Generator) GenerateStream(ctx context.Context, prompt string, temperature float64) iter.Seq2[string, error] {
	return ai.PumpStream(ctx, g.logger, func(ctx context.Context, emit func(string) error) error {
		_, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt,
			llms.WithTemperature(temperature),
			llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
				return emit(string(chunk))
			}))
		return err
	})
}

// GenerateJSON produces a response and parses it into a JSON object.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string, temperature float64) (map[string]any, error) {
	response, err := g.Generate(ctx, prompt, temperature)
	if err != nil {
		return nil, err
	}
	return ai.ExtractJSON(response)
}
