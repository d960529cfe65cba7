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


package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
)

const defaultIntentTimeout = 30 * time.Second

const intentTemperature = 0.1

const intentPromptTemplate = `You are a query analyzer for a personal work log. Analyze the user's question and extract retrieval intent.

Today's date is %s.

Question: %s

Respond with ONLY a JSON object, no other text:
{
  "date_range": {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"} or null if the question has no time reference,
  "tags": ["technology or concept names mentioned, e.g. React, CORS"],
  "semantic_query": "a short phrase capturing what the question is about",
  "needs_rag": true if answering requires looking at past log entries, false for greetings or smalltalk
}

Resolve relative time references ("last week", "yesterday", "in March") against today's date.`

// Extractor turns a free-text question into a structured retrieval intent
// using a generative model.
type Extractor struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithIntentTimeout bounds a single intent extraction call.
func WithIntentTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewExtractor creates an Extractor backed by the given generator.
func NewExtractor(generator ai.Generator, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		generator: generator,
		timeout:   defaultIntentTimeout,
		logger:    slog.Default().With("component", "intent"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract analyzes the question and returns its retrieval intent. Model or
// parse failures degrade to core.DefaultIntent so a flaky model never
// blocks retrieval; the failure is logged, not returned.
func (e *Extractor) Extract(ctx context.Context, query string, now time.Time) *core.Intent {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(intentPromptTemplate, now.Format("2006-01-02"), query)
	obj, err := e.generator.GenerateJSON(ctx, prompt, intentTemperature)
	if err != nil {
		e.logger.Warn("intent extraction failed, using defaults", "err", err)
		fallback := core.DefaultIntent(query)
		return &fallback
	}

	intent := parseIntent(obj, query)
	e.logger.Debug("intent extracted",
		"has_date_range", intent.DateRange != nil,
		"tags", len(intent.Tags),
		"needs_semantic", intent.NeedsSemantic)
	return intent
}

// parseIntent maps the model's JSON object onto a core.Intent, tolerating
// missing or mistyped fields. Date range strings are passed through
// unvalidated; the date channel rejects malformed ones.
func parseIntent(obj map[string]any, query string) *core.Intent {
	parsed := core.DefaultIntent(query)
	intent := &parsed

	if dr, ok := obj["date_range"].(map[string]any); ok {
		start, _ := dr["start"].(string)
		end, _ := dr["end"].(string)
		if start != "" && end != "" {
			intent.DateRange = &core.DateRange{Start: start, End: end}
		}
	}

	if rawTags, ok := obj["tags"].([]any); ok {
		for _, raw := range rawTags {
			if tag, ok := raw.(string); ok && strings.TrimSpace(tag) != "" {
				intent.Tags = append(intent.Tags, strings.TrimSpace(tag))
			}
		}
	}

	if sq, ok := obj["semantic_query"].(string); ok && strings.TrimSpace(sq) != "" {
		intent.SemanticQuery = strings.TrimSpace(sq)
	}

	if needs, ok := obj["needs_rag"].(bool); ok {
		intent.NeedsSemantic = needs
	}

	return intent
}
