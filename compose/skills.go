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

const skillsTemperature = 0.7

const skillsPromptTemplate = `Analyze the following new work logs and daily summaries to update a developer's skill tree.

NEW LOGS:
%s

NEW SUMMARIES:
%s

EXISTING SKILL TREE:
%s

Identify skills to add or update:
1. Only include skills with strong evidence in the new data (mentioned repeatedly or worked on in depth).
2. Maturity level runs 1-5, judged on frequency, depth and variety of the work.
3. Give specific work examples for each skill.
4. Categories: Language, Framework, Tool, Concept, Platform.
5. When updating an existing skill, never lower its maturity level.

Respond with ONLY a JSON object, no other text:
{
  "skills": [
    {
      "name": "React",
      "category": "Framework",
      "maturity_level": 4,
      "work_examples": ["Built dashboard with hooks"],
      "is_update": true
    }
  ]
}`

// Skill is one node of the skill tree: an observed competency with a 1-5
// maturity level. IsUpdate distinguishes a revision of an existing node
// from a newly observed skill.
type Skill struct {
	Name          string
	Category      string
	MaturityLevel int
	WorkExamples  []string
	IsUpdate      bool
}

// AnalyzeSkills reads the period's log entries alongside any prepared
// daily summaries and proposes skill-tree updates relative to the existing
// skills. The caller owns the skill tree; this only suggests changes.
func (c *Composer) AnalyzeSkills(ctx context.Context, startDate, endDate string, summaries []DailySummary, existing []Skill) ([]Skill, error) {
	logs, err := c.logsInPeriod(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 && len(summaries) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoLogs, startDate, endDate)
	}

	logsContext := "None"
	if len(logs) > 0 {
		lines := make([]string, len(logs))
		for i, log := range logs {
			line := fmt.Sprintf("[%s] %s", log.Timestamp.Format(dateLayout), log.Content)
			if len(log.Tags) > 0 {
				line += fmt.Sprintf(" (Tags: %s)", tagNames(log.Tags))
			}
			lines[i] = line
		}
		logsContext = strings.Join(lines, "\n")
	}

	summariesContext := "None"
	if len(summaries) > 0 {
		lines := make([]string, len(summaries))
		for i, s := range summaries {
			line := fmt.Sprintf("[%s] %s", s.Date, s.Content)
			if len(s.TechStack) > 0 {
				line += fmt.Sprintf(" (Tech: %s)", strings.Join(s.TechStack, ", "))
			}
			lines[i] = line
		}
		summariesContext = strings.Join(lines, "\n")
	}

	existingContext := "None"
	if len(existing) > 0 {
		lines := make([]string, len(existing))
		for i, s := range existing {
			lines[i] = fmt.Sprintf("%s (%s): Level %d/5", s.Name, s.Category, s.MaturityLevel)
		}
		existingContext = strings.Join(lines, "\n")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(skillsPromptTemplate, logsContext, summariesContext, existingContext)
	c.logger.Info("analyzing skill tree",
		"logs", len(logs), "summaries", len(summaries), "existing", len(existing))

	obj, err := c.generator.GenerateJSON(ctx, prompt, skillsTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return parseSkills(obj), nil
}

// parseSkills maps the model's JSON onto Skill values, tolerating missing
// or mistyped fields. Entries without a name are dropped.
func parseSkills(obj map[string]any) []Skill {
	rawSkills, ok := obj["skills"].([]any)
	if !ok {
		return nil
	}

	var skills []Skill
	for _, raw := range rawSkills {
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
		if strings.TrimSpace(category) == "" {
			category = "Other"
		}

		level := 1
		if raw, ok := entry["maturity_level"].(float64); ok && raw >= 1 {
			level = int(raw)
		}

		isUpdate, _ := entry["is_update"].(bool)
		skills = append(skills, Skill{
			Name:          name,
			Category:      category,
			MaturityLevel: level,
			WorkExamples:  stringsOf(entry["work_examples"]),
			IsUpdate:      isUpdate,
		})
	}
	return skills
}
