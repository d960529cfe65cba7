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
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
)

const defaultAnswerTimeout = 120 * time.Second

const answerTemperature = 0.7

// Prompt assembly limits. Retrieval can return more than fits a useful
// prompt, so only the best-scored entries and the recent turns go in.
const (
	maxContextLogs   = 15
	maxHistoryTurns  = 10
	answerDateFormat = "2006-01-02"
)

const answerPromptTemplate = `You are a helpful assistant answering questions about the user's personal work log. Ground every claim in the log entries below; if they do not contain the answer, say so instead of guessing.

Work log entries (most relevant first):
%s

%sQuestion: %s

Answer:`

// Synthesizer composes the answer prompt from retrieved logs and
// conversation history and runs it through the generator.
type Synthesizer struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithAnswerTimeout bounds a single answer generation call.
func WithAnswerTimeout(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSynthesizer creates a Synthesizer backed by the given generator.
func NewSynthesizer(generator ai.Generator, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		generator: generator,
		timeout:   defaultAnswerTimeout,
		logger:    slog.Default().With("component", "synthesis"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer generates a complete answer for the question given retrieved logs
// and prior conversation turns.
func (s *Synthesizer) Answer(ctx context.Context, query string, logs []*core.RetrievedLog, history []core.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.generator.Generate(ctx, buildAnswerPrompt(query, logs, history), answerTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// AnswerStream is Answer with the response delivered incrementally. The
// timeout covers the whole stream, not individual fragments.
func (s *Synthesizer) AnswerStream(ctx context.Context, query string, logs []*core.RetrievedLog, history []core.Message) iter.Seq2[string, error] {
	prompt := buildAnswerPrompt(query, logs, history)
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		for fragment, err := range s.generator.GenerateStream(ctx, prompt, answerTemperature) {
			if err != nil {
				yield("", fmt.Errorf("%w: %v", ErrGeneration, err))
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// buildAnswerPrompt renders the fixed answer template. Logs arrive ranked
// best first; only the top entries are included, each prefixed with its
// calendar date. History keeps the most recent turns in order.
func buildAnswerPrompt(query string, logs []*core.RetrievedLog, history []core.Message) string {
	var contextLines []string
	for i, log := range logs {
		if i >= maxContextLogs {
			break
		}
		contextLines = append(contextLines,
			fmt.Sprintf("[%s] %s", log.Record.Timestamp.Format(answerDateFormat), log.Record.Content))
	}
	contextBlock := "(no matching log entries)"
	if len(contextLines) > 0 {
		contextBlock = strings.Join(contextLines, "\n")
	}

	historyBlock := ""
	if len(history) > 0 {
		turns := history
		if len(turns) > maxHistoryTurns {
			turns = turns[len(turns)-maxHistoryTurns:]
		}
		var lines []string
		for _, msg := range turns {
			speaker := "User"
			if msg.Role == core.RoleAssistant {
				speaker = "Assistant"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, msg.Content))
		}
		historyBlock = "Conversation so far:\n" + strings.Join(lines, "\n") + "\n\n"
	}

	return fmt.Sprintf(answerPromptTemplate, contextBlock, historyBlock, query)
}
