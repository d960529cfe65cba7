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
	"iter"
	"sync/atomic"
)

// MockGenerator implements ai.Generator for testing. The zero behavior
// returns Response (and JSONResponse for GenerateJSON); any func field set
// takes precedence.
type MockGenerator struct {
	Response     string
	JSONResponse map[string]any

	GenerateFunc       func(ctx context.Context, prompt string, temperature float64) (string, error)
	GenerateStreamFunc func(ctx context.Context, prompt string, temperature float64) iter.Seq2[string, error]
	GenerateJSONFunc   func(ctx context.Context, prompt string, temperature float64) (map[string]any, error)

	callCount atomic.Int64
	// LastPrompt records the prompt of the most recent call for assertions.
	LastPrompt string
}

// NewMockGenerator returns a MockGenerator answering every call with
// response. Returns the CONCRETE type so tests can inject behavior and
// inspect call counts.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// CallCount reports how many generation calls were made.
func (m *MockGenerator) CallCount() int64 {
	return m.callCount.Load()
}

func (m *MockGenerator) Name() string {
	return "Mock"
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.callCount.Add(1)
	m.LastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, temperature)
	}
	return m.Response, nil
}

// GenerateStream yields the canned response rune by rune, which is enough
// to exercise consumers that accumulate fragments.
func (m *MockGenerator) GenerateStream(ctx context.Context, prompt string, temperature float64) iter.Seq2[string, error] {
	m.callCount.Add(1)
	m.LastPrompt = prompt
	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, prompt, temperature)
	}
	return func(yield func(string, error) bool) {
		if m.GenerateFunc != nil {
			response, err := m.GenerateFunc(ctx, prompt, temperature)
			if err != nil {
				yield("", err)
				return
			}
			yield(response, nil)
			return
		}
		for i, r := range m.Response {
			fragment := m.Response[i : i+len(string(r))]
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, temperature float64) (map[string]any, error) {
	m.callCount.Add(1)
	m.LastPrompt = prompt
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, temperature)
	}
	return m.JSONResponse, nil
}
