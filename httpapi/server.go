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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/brainlog/agent"
	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/compose"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

// QueryAgent is the part of the agent the HTTP layer needs.
type QueryAgent interface {
	Ask(ctx context.Context, query string, history []core.Message) (*agent.Result, error)
	AskStream(ctx context.Context, query string, history []core.Message) *agent.StreamResult
}

// AgentFactory yields an agent for a request. providerOverride comes from
// the request's llm_provider field; empty means the configured default.
type AgentFactory func(ctx context.Context, providerOverride string) (QueryAgent, error)

// ContentComposer is the part of the composer the HTTP layer needs.
type ContentComposer interface {
	DailySummary(ctx context.Context, date string) (*compose.DailySummary, error)
	BlogPost(ctx context.Context, startDate, endDate, periodName string) (*compose.BlogPost, error)
	AnalyzeSkills(ctx context.Context, startDate, endDate string, summaries []compose.DailySummary, existing []compose.Skill) ([]compose.Skill, error)
	ConversationTitle(ctx context.Context, firstMessage string) string
}

// ComposerFactory yields a content composer for a request.
type ComposerFactory func(ctx context.Context) (ContentComposer, error)

// ProviderNameFunc reports the default generative provider display name
// for the health endpoint.
type ProviderNameFunc func(ctx context.Context) string

// Server exposes the question-answering agent and the content composer
// over HTTP.
type Server struct {
	agents       AgentFactory
	composers    ComposerFactory
	providerName ProviderNameFunc
	repo         storage.LogRepository
	logger       *slog.Logger
	mux          *http.ServeMux
}

// NewServer creates a Server routing to agents and composers from the
// factories. The repository is only used for the health endpoint;
// providerName may be nil.
func NewServer(agents AgentFactory, composers ComposerFactory, providerName ProviderNameFunc, repo storage.LogRepository) *Server {
	if providerName == nil {
		providerName = func(context.Context) string { return "unknown" }
	}
	s := &Server{
		agents:       agents,
		composers:    composers,
		providerName: providerName,
		repo:         repo,
		logger:       slog.Default().With("component", "httpapi"),
		mux:          http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/ask", s.handleAsk)
	s.mux.HandleFunc("POST /api/ask/stream", s.handleAskStream)
	s.mux.HandleFunc("POST /api/ai/summary", s.handleSummary)
	s.mux.HandleFunc("POST /api/ai/blog", s.handleBlog)
	s.mux.HandleFunc("POST /api/ai/skills", s.handleSkills)
	s.mux.HandleFunc("POST /api/ai/title", s.handleTitle)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server on addr until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) decodeAsk(w http.ResponseWriter, r *http.Request) (*askRequest, []core.Message, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return nil, nil, false
	}

	history := make([]core.Message, len(req.History))
	for i, msg := range req.History {
		history[i] = core.Message{Role: msg.Role, Content: msg.Content}
	}
	return &req, history, true
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, history, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	queryAgent, err := s.agents(r.Context(), req.LLMProvider)
	if err != nil {
		s.logger.Error("agent unavailable", "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	result, err := queryAgent.Ask(r.Context(), req.Query, history)
	if err != nil {
		s.logger.Error("ask failed", "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, askResponse{
		Answer:        result.Answer,
		Intent:        toIntentPayload(result.Intent),
		RetrievedLogs: toLogPayloads(result.RetrievedLogs),
	})
}

// handleAskStream answers over server-sent events: one metadata event with
// the retrieval outcome, content events carrying answer fragments, then a
// terminal [DONE]. The request context cancels generation when the client
// disconnects.
func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	req, history, ok := s.decodeAsk(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	queryAgent, err := s.agents(r.Context(), req.LLMProvider)
	if err != nil {
		s.logger.Error("agent unavailable", "err", err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	stream := queryAgent.AskStream(r.Context(), req.Query, history)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	intent := toIntentPayload(stream.Intent)
	s.writeEvent(w, streamEvent{
		Type:     "metadata",
		Intent:   &intent,
		LogCount: len(stream.RetrievedLogs),
	})
	flusher.Flush()

	for fragment, err := range stream.Fragments {
		if err != nil {
			s.logger.Error("stream generation failed", "err", err)
			s.writeEvent(w, streamEvent{Type: "error", Error: err.Error()})
			flusher.Flush()
			return
		}
		s.writeEvent(w, streamEvent{Type: "content", Content: fragment})
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		LLMProvider: s.providerName(r.Context()),
	}

	count, err := s.repo.CountLogs(r.Context())
	if err != nil {
		resp.Status = "degraded"
	} else {
		resp.DatabaseConnected = true
		resp.Logs = count
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeEvent(w http.ResponseWriter, event streamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("error encoding stream event", "err", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// statusForError maps agent and composer errors onto HTTP statuses.
// Missing provider credentials are a deployment problem (503), a failing
// model a bad gateway (502), bad request arguments 400 and an empty
// period 404.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ai.ErrNoProvider):
		return http.StatusServiceUnavailable
	case errors.Is(err, agent.ErrGeneration), errors.Is(err, compose.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, compose.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, compose.ErrNoLogs):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
