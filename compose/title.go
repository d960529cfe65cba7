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
)

const titleTemperature = 0.5

const maxTitleRunes = 50

const fallbackTitle = "New Chat"

const titlePromptTemplate = `Generate a very short title (max 5 words) for a conversation that starts with this message:
"%s"

Respond with ONLY the title, no quotes, no explanation.`

// ConversationTitle names a conversation after its opening message. Model
// failures degrade to a stock title; a chat is usable without a good name,
// so the failure is logged, not returned.
func (c *Composer) ConversationTitle(ctx context.Context, firstMessage string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(titlePromptTemplate, firstMessage)
	response, err := c.generator.Generate(ctx, prompt, titleTemperature)
	if err != nil {
		c.logger.Warn("title generation failed, using fallback", "err", err)
		return fallbackTitle
	}

	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"'`))
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	if title == "" {
		return fallbackTitle
	}
	return title
}
