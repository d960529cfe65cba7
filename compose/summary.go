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

	"github.com/poiesic/brainlog/core"
)

const summaryTemperature = 0.7

const summaryPromptTemplate = `You are a senior technical lead. Summarize my work for %s based on these logs:

=== MANUAL WORK LOGS ===
%s

%sRespond with ONLY a JSON object, no other text:
{
  "content": "A paragraph summary of the day.%s",
  "key_achievements": ["achievement 1", "achievement 2"],
  "tech_stack_used": ["tech1", "tech2"]
}`

const summaryCommitSection = `=== IMPORTED COMMITS ===
%s

The commit lines above are raw commit messages synced from my
repositories. Infer the work they represent from the repository names,
message prefixes (feat:, fix:, refactor:) and technical keywords, and
make clear in the summary which parts come from commits rather than
manual logs.

`

const summaryCommitInstruction = ` Include a section starting with "From commits:" covering work inferred from imported commits.`

// DailySummary is a structured summary of one day's work.
type DailySummary struct {
	Date            string
	Content         string
	KeyAchievements []string
	TechStack       []string
}

// DailySummary summarizes the entries logged on the given calendar date.
// Manually written entries and imported commits are presented to the model
// separately; commit messages need interpretation, manual logs do not.
func (c *Composer) DailySummary(ctx context.Context, date string) (*DailySummary, error) {
	logs, err := c.logsInPeriod(ctx, date, date)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLogs, date)
	}

	var manual, commits []*core.LogRecord
	for _, log := range logs {
		if log.Source == core.SourceCommit {
			commits = append(commits, log)
		} else {
			manual = append(manual, log)
		}
	}

	manualText := "(No manual logs today)"
	if len(manual) > 0 {
		manualText = formatTimedLines(manual)
	}

	commitSection, commitInstruction := "", ""
	if len(commits) > 0 {
		commitSection = fmt.Sprintf(summaryCommitSection, formatTimedLines(commits))
		commitInstruction = summaryCommitInstruction
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(summaryPromptTemplate, date, manualText, commitSection, commitInstruction)
	c.logger.Info("generating daily summary", "date", date, "logs", len(logs))

	obj, err := c.generator.GenerateJSON(ctx, prompt, summaryTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	content, _ := obj["content"].(string)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: summary content missing from response", ErrGeneration)
	}

	return &DailySummary{
		Date:            date,
		Content:         strings.TrimSpace(content),
		KeyAchievements: stringsOf(obj["key_achievements"]),
		TechStack:       stringsOf(obj["tech_stack_used"]),
	}, nil
}

func formatTimedLines(logs []*core.LogRecord) string {
	lines := make([]string, len(logs))
	for i, log := range logs {
		lines[i] = fmt.Sprintf("- [%s] %s", log.Timestamp.Format("15:04"), log.Content)
	}
	return strings.Join(lines, "\n")
}
