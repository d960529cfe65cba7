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


// Package ai provides abstractions for the AI services used in brainlog.
//
// It defines the interfaces the retrieval agent depends on, following the
// dependency inversion principle so the core logic never couples to a
// concrete model vendor:
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces text, token streams and JSON objects from a
//     generative model
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible chat and embedding APIs (also serves
//     DeepSeek, Ollama and other compatible endpoints via the base URL)
//   - ai/googleai: Gemini models through the Google AI API
//   - ai/mock: test doubles for unit testing without external services
//
// Provider selection (explicit override, configured preference, then
// priority-ordered auto-detection by available credential) lives in the
// root brainlog package, which can see all implementation packages.
//
// # Constructor Return Type Pattern
//
// Production constructors (openai.NewGenerator, googleai.NewGenerator,
// openai.NewEmbedder) return INTERFACE types to enforce abstraction.
// Test constructors (mock.NewMockEmbedder, mock.NewMockGenerator) return
// CONCRETE types so tests can inject behavior and assert call counts.
package ai
