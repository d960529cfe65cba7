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
	"iter"
	"log/slog"
	"time"

	"github.com/poiesic/brainlog/core"
)

// Agent answers free-text questions over the log corpus. Each question
// runs the same pipeline: extract intent, retrieve and fuse matching logs,
// synthesize an answer grounded in them.
type Agent struct {
	extractor   *Extractor
	coordinator *Coordinator
	synthesizer *Synthesizer
	logger      *slog.Logger

	// now is swappable for tests; intent extraction resolves relative
	// dates against it.
	now func() time.Time
}

// Result is a complete answer with the retrieval evidence behind it.
type Result struct {
	Answer        string
	Intent        *core.Intent
	RetrievedLogs []*core.RetrievedLog
}

// StreamResult carries the retrieval evidence up front and the answer as a
// fragment stream. Intent and RetrievedLogs are final before the first
// fragment is yielded.
type StreamResult struct {
	Intent        *core.Intent
	RetrievedLogs []*core.RetrievedLog
	Fragments     iter.Seq2[string, error]
}

// NewAgent wires the three pipeline stages together.
func NewAgent(extractor *Extractor, coordinator *Coordinator, synthesizer *Synthesizer) *Agent {
	return &Agent{
		extractor:   extractor,
		coordinator: coordinator,
		synthesizer: synthesizer,
		logger:      slog.Default().With("component", "agent"),
		now:         time.Now,
	}
}

// Ask answers the question in one shot. Retrieval results are returned
// even when generation fails, wrapped in ErrGeneration.
func (a *Agent) Ask(ctx context.Context, query string, history []core.Message) (*Result, error) {
	intent := a.extractor.Extract(ctx, query, a.now())
	logs := a.coordinator.Retrieve(ctx, intent)
	a.logger.Info("retrieval complete", "logs", len(logs))

	answer, err := a.synthesizer.Answer(ctx, query, logs, history)
	if err != nil {
		return &Result{Intent: intent, RetrievedLogs: logs}, err
	}
	return &Result{Answer: answer, Intent: intent, RetrievedLogs: logs}, nil
}

// AskStream runs intent extraction and retrieval eagerly, then returns the
// answer as a lazy fragment stream. Generation does not start until the
// caller iterates Fragments.
func (a *Agent) AskStream(ctx context.Context, query string, history []core.Message) *StreamResult {
	intent := a.extractor.Extract(ctx, query, a.now())
	logs := a.coordinator.Retrieve(ctx, intent)
	a.logger.Info("retrieval complete", "logs", len(logs), "streaming", true)

	return &StreamResult{
		Intent:        intent,
		RetrievedLogs: logs,
		Fragments:     a.synthesizer.AnswerStream(ctx, query, logs, history),
	}
}
