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


package httpapi

import (
	"github.com/poiesic/brainlog/core"
)

// askRequest is the body of POST /api/ask and /api/ask/stream. LLMProvider
// optionally forces a generative provider for this request only.
type askRequest struct {
	Query       string           `json:"query"`
	History     []messagePayload `json:"conversation_history,omitempty"`
	LLMProvider string           `json:"llm_provider,omitempty"`
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// askResponse is the body of a successful POST /api/ask.
type askResponse struct {
	Answer        string        `json:"answer"`
	Intent        intentPayload `json:"intent"`
	RetrievedLogs []logPayload  `json:"retrieved_logs"`
}

// healthResponse is the body of GET /api/health.
type healthResponse struct {
	Status            string `json:"status"`
	LLMProvider       string `json:"llm_provider"`
	DatabaseConnected bool   `json:"database_connected"`
	Logs              int    `json:"logs"`
}

type intentPayload struct {
	DateRange     *dateRangePayload `json:"date_range,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	SemanticQuery string            `json:"semantic_query,omitempty"`
	NeedsRAG      bool              `json:"needs_rag"`
}

type dateRangePayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// logPayload is one retrieved log entry. Timestamps are epoch milliseconds.
type logPayload struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Summary   string   `json:"summary,omitempty"`
	Timestamp int64    `json:"timestamp"`
	Tags      []string `json:"tags,omitempty"`
	Source    string   `json:"source"`
	Score     float64  `json:"score"`
}

// summaryRequest is the body of POST /api/ai/summary.
type summaryRequest struct {
	Date string `json:"date"`
}

// summaryPayload is a generated daily summary. It is both the
// /api/ai/summary response and the shape of prepared summaries supplied
// to /api/ai/skills.
type summaryPayload struct {
	Date            string   `json:"date"`
	Content         string   `json:"content"`
	KeyAchievements []string `json:"key_achievements"`
	TechStackUsed   []string `json:"tech_stack_used"`
}

// blogRequest is the body of POST /api/ai/blog. The date range is
// inclusive; PeriodName labels the period in the generated post.
type blogRequest struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	PeriodName string `json:"period_name"`
}

type blogResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// skillsRequest is the body of POST /api/ai/skills. The caller owns the
// skill tree and sends its current state; the response proposes changes.
type skillsRequest struct {
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	Summaries      []summaryPayload `json:"summaries,omitempty"`
	ExistingSkills []skillPayload   `json:"existing_skills,omitempty"`
}

type skillsResponse struct {
	Skills []skillPayload `json:"skills"`
}

type skillPayload struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	MaturityLevel int      `json:"maturity_level"`
	WorkExamples  []string `json:"work_examples"`
	IsUpdate      bool     `json:"is_update"`
}

// titleRequest is the body of POST /api/ai/title.
type titleRequest struct {
	Message string `json:"message"`
}

type titleResponse struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// streamEvent is one SSE data payload on /api/ask/stream. Type is
// "metadata", "content" or "error"; the other fields apply per type.
type streamEvent struct {
	Type     string         `json:"type"`
	Intent   *intentPayload `json:"intent,omitempty"`
	LogCount int            `json:"log_count,omitempty"`
	Content  string         `json:"content,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func toIntentPayload(intent *core.Intent) intentPayload {
	payload := intentPayload{
		Tags:          intent.Tags,
		SemanticQuery: intent.SemanticQuery,
		NeedsRAG:      intent.NeedsSemantic,
	}
	if intent.DateRange != nil {
		payload.DateRange = &dateRangePayload{
			Start: intent.DateRange.Start,
			End:   intent.DateRange.End,
		}
	}
	return payload
}

func toLogPayloads(logs []*core.RetrievedLog) []logPayload {
	payloads := make([]logPayload, len(logs))
	for i, log := range logs {
		tags := make([]string, len(log.Record.Tags))
		for j, tag := range log.Record.Tags {
			tags[j] = tag.Name
		}
		payloads[i] = logPayload{
			ID:        log.Record.Id,
			Content:   log.Record.Content,
			Summary:   log.Record.Summary,
			Timestamp: log.Record.Timestamp.UnixMilli(),
			Tags:      tags,
			Source:    log.Record.Source.String(),
			Score:     log.Score,
		}
	}
	return payloads
}
