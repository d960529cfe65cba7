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


package compose

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/brainlog/core"
)

const blogTemperature = 0.7

// minBlogRunes is the shortest raw fallback response worth keeping as a
// blog post.
const minBlogRunes = 100

const blogPromptTemplate = `Write a high-quality, engaging technical blog post summarizing my work for: %s.

Raw logs:
%s

Guidelines:
1. The title should be catchy.
2. The content should be Markdown.
3. Group related tasks into sections such as "Feature Development", "Bug Fixes" or "Learnings".
4. Highlight the specific technologies mentioned.
5. Tone: professional yet personal, like a building-in-public update.

Respond with ONLY a JSON object, no other text:
{
  "title": "string",
  "content": "markdown string"
}`

// BlogPost is a generated long-form writeup of a period of work.
type BlogPost struct {
	Title   string
	Content string
}

// BlogPost writes a blog post covering the inclusive date range.
// periodName is the human-readable label woven into the prompt and the
// fallback title, e.g. "March 2026" or "Week 12". When the model answers
// in prose instead of JSON the raw text is kept under a stock title.
func (c *Composer) BlogPost(ctx context.Context, startDate, endDate, periodName string) (*BlogPost, error) {
	logs, err := c.logsInPeriod(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoLogs, startDate, endDate)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(blogPromptTemplate, periodName, formatDatedLines(logs))
	c.logger.Info("generating blog post", "period", periodName, "logs", len(logs))

	obj, err := c.generator.GenerateJSON(ctx, prompt, blogTemperature)
	if err == nil {
		title, _ := obj["title"].(string)
		content, _ := obj["content"].(string)
		if strings.TrimSpace(title) != "" && strings.TrimSpace(content) != "" {
			return &BlogPost{Title: strings.TrimSpace(title), Content: content}, nil
		}
		err = fmt.Errorf("title or content missing from response")
	}

	c.logger.Warn("blog JSON parse failed, retrying for raw text", "err", err)
	raw, rawErr := c.generator.Generate(ctx, prompt, blogTemperature)
	if rawErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, rawErr)
	}
	if utf8.RuneCountInString(raw) < minBlogRunes {
		return nil, fmt.Errorf("%w: response too short to be a post", ErrGeneration)
	}

	return &BlogPost{Title: "Dev Log: " + periodName, Content: raw}, nil
}

func formatDatedLines(logs []*core.LogRecord) string {
	lines := make([]string, len(logs))
	for i, log := range logs {
		lines[i] = fmt.Sprintf("[%s] %s", log.Timestamp.Format(dateLayout), log.Content)
	}
	return strings.Join(lines, "\n")
}
