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


package mock

import (
	"context"
	"hash/fnv"
	"sync/atomic"
)

// MockDimension is the vector size produced by the default mock embedding.
const MockDimension = 384

// MockEmbedder implements ai.Embedder for testing. By default it produces
// deterministic pseudo-random vectors derived from the text hash, so equal
// texts always embed equally and tests need no external service. Either
// func field can be set to override behavior.
type MockEmbedder struct {
	EmbedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount atomic.Int64
}

// NewMockEmbedder returns a MockEmbedder with deterministic default
// behavior. Returns the CONCRETE type so tests can inject behavior and
// inspect call counts.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// CallCount reports how many embedding calls were made.
func (m *MockEmbedder) CallCount() int64 {
	return m.callCount.Load()
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return DeterministicVector(text), nil
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)
	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = DeterministicVector(text)
	}
	return vectors, nil
}

// DeterministicVector derives a MockDimension-sized vector from the FNV
// hash of the text. Values fall in [-1, 1).
func DeterministicVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, MockDimension)
	for i := range vec {
		// xorshift64 keeps the sequence deterministic per seed
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		vec[i] = float32(int64(state%2000)-1000) / 1000.0
	}
	return vec
}
