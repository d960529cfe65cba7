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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
)

const enrichTemperature = 0.1

// summaryFallbackRunes caps the summary when the model cannot produce one
// and the entry's first line stands in for it.
const summaryFallbackRunes = 100

const enrichPromptTemplate = `Extract structured metadata from this work log entry.

Entry: %s

Respond with ONLY a JSON object, no other text:
{
  "tags": [{"name": "React", "category": "framework"}],
  "summary": "one short line describing the work"
}

Tag categories: language, framework, concept, task, other.
Tag only technologies and concepts actually mentioned; an entry with none gets an empty list.`

// enricher derives tags and a summary for a log entry using the generative
// model.
type enricher struct {
	generator ai.Generator
	logger    *slog.Logger
}

func newEnricher(generator ai.Generator, logger *slog.Logger) (*enricher, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &enricher{
		generator: generator,
		logger:    logger.With("processor", "enrichment"),
	}, nil
}

// enrich returns tags and a summary for the content. Model failures
// degrade to no tags and a truncated first line, never an error; an entry
// without metadata is still worth storing.
func (e *enricher) enrich(ctx context.Context, content string) ([]core.Tag, string) {
	prompt := fmt.Sprintf(enrichPromptTemplate, content)
	obj, err := e.generator.GenerateJSON(ctx, prompt, enrichTemperature)
	if err != nil {
		e.logger.Warn("enrichment failed, storing entry without tags", "err", err)
		return nil, fallbackSummary(content)
	}

	var tags []core.Tag
	if rawTags, ok := obj["tags"].([]any); ok {
		for _, raw := range rawTags {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			category, _ := entry["category"].(string)
			tags = append(tags, core.Tag{
				Name:     name,
				Category: core.ParseTagCategory(category),
			})
		}
	}

	summary, _ := obj["summary"].(string)
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = fallbackSummary(content)
	}

	return tags, summary
}

// fallbackSummary takes the first line of the content, truncated.
func fallbackSummary(content string) string {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) > summaryFallbackRunes {
		return string(runes[:summaryFallbackRunes])
	}
	return string(runes)
}
