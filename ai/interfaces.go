package ai

import (
	"context"
	"iter"
)

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use and must
// be deterministic for a fixed model version: embedding the same text twice
// yields the same vector.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Arbitrarily long input is handled by internal chunking and mean
	// pooling; the returned vector always has the model's fixed dimension.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a generative model.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Name identifies the backing provider ("DeepSeek", "Gemini", "OpenAI").
	Name() string

	// Generate produces a complete response for the prompt.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)

	// GenerateStream produces the response as an ordered, finite sequence
	// of text fragments. Iteration stops early if the consumer breaks or
	// the context is cancelled; a generation failure is yielded as the
	// final non-nil error.
	GenerateStream(ctx context.Context, prompt string, temperature float64) iter.Seq2[string, error]

	// GenerateJSON produces a response and parses it into a JSON object,
	// tolerating markdown fences and surrounding prose. Returns ErrNoJSON
	// if no object can be recovered from the response.
	GenerateJSON(ctx context.Context, prompt string, temperature float64) (map[string]any, error)
}
