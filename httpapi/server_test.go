package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/brainlog/agent"
	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/ai/mock"
	"github.com/poiesic/brainlog/compose"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
	"github.com/poiesic/brainlog/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T, intentGen, answerGen *mock.MockGenerator) (*Server, storage.LogRepository) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	queryAgent := agent.NewAgent(
		agent.NewExtractor(intentGen),
		agent.NewCoordinator(repo, mock.NewMockEmbedder()),
		agent.NewSynthesizer(answerGen),
	)
	agents := func(ctx context.Context, override string) (QueryAgent, error) {
		return queryAgent, nil
	}
	composer := compose.NewComposer(repo, answerGen)
	composers := func(ctx context.Context) (ContentComposer, error) {
		return composer, nil
	}
	providerName := func(context.Context) string { return "Mock" }
	return NewServer(agents, composers, providerName, repo), repo
}

func addLog(t *testing.T, repo storage.LogRepository, id, content string, ts time.Time, tags ...string) {
	t.Helper()
	record := &core.LogRecord{
		Id:        id,
		Content:   content,
		Timestamp: ts,
		Source:    core.SourceManual,
	}
	for _, name := range tags {
		record.Tags = append(record.Tags, core.Tag{Name: name, Category: core.CategoryOther})
	}
	_, err := repo.AddLogRecords(context.Background(), record)
	require.NoError(t, err)
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func intentGenWithTags(tags ...any) *mock.MockGenerator {
	gen := mock.NewMockGenerator("")
	gen.JSONResponse = map[string]any{"tags": tags, "needs_rag": false}
	return gen
}

func TestHandleAsk(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server, repo := setupServer(t, intentGenWithTags("React"), mock.NewMockGenerator("You fixed a React bug."))
		addLog(t, repo, "log-a", "fixed a react bug", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "React")

		rec := postJSON(t, server, "/api/ask", askRequest{Query: "what react work did I do?"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp askResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "You fixed a React bug.", resp.Answer)
		require.Len(t, resp.RetrievedLogs, 1)
		assert.Equal(t, "log-a", resp.RetrievedLogs[0].ID)
		assert.Equal(t, "manual", resp.RetrievedLogs[0].Source)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC).UnixMilli(), resp.RetrievedLogs[0].Timestamp)
		assert.Equal(t, []string{"React"}, resp.Intent.Tags)
	})

	t.Run("missing query", func(t *testing.T) {
		server, _ := setupServer(t, intentGenWithTags(), mock.NewMockGenerator("x"))

		rec := postJSON(t, server, "/api/ask", askRequest{Query: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		server, _ := setupServer(t, intentGenWithTags(), mock.NewMockGenerator("x"))

		req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider override reaches the factory", func(t *testing.T) {
		var gotOverride string
		server, _ := setupServer(t, intentGenWithTags(), mock.NewMockGenerator("x"))
		inner := server.agents
		server.agents = func(ctx context.Context, override string) (QueryAgent, error) {
			gotOverride = override
			return inner(ctx, override)
		}

		postJSON(t, server, "/api/ask", askRequest{Query: "q", LLMProvider: "gemini"})
		assert.Equal(t, "gemini", gotOverride)
	})

	t.Run("no provider maps to service unavailable", func(t *testing.T) {
		server, _ := setupServer(t, intentGenWithTags(), mock.NewMockGenerator("x"))
		server.agents = func(context.Context, string) (QueryAgent, error) {
			return nil, ai.ErrNoProvider
		}

		rec := postJSON(t, server, "/api/ask", askRequest{Query: "q"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("generation failure maps to bad gateway", func(t *testing.T) {
		answerGen := mock.NewMockGenerator("")
		answerGen.GenerateFunc = func(context.Context, string, float64) (string, error) {
			return "", fmt.Errorf("model overloaded")
		}
		server, repo := setupServer(t, intentGenWithTags("React"), answerGen)
		addLog(t, repo, "log-a", "entry", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "React")

		rec := postJSON(t, server, "/api/ask", askRequest{Query: "q"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandleAskStream(t *testing.T) {
	parseEvents := func(t *testing.T, body string) ([]streamEvent, bool) {
		t.Helper()
		var events []streamEvent
		done := false
		for _, line := range strings.Split(body, "\n") {
			payload, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				continue
			}
			if payload == "[DONE]" {
				done = true
				continue
			}
			var event streamEvent
			require.NoError(t, json.Unmarshal([]byte(payload), &event))
			events = append(events, event)
		}
		return events, done
	}

	t.Run("metadata then content then done", func(t *testing.T) {
		server, repo := setupServer(t, intentGenWithTags("React"), mock.NewMockGenerator("streamed"))
		addLog(t, repo, "log-a", "react entry", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "React")

		rec := postJSON(t, server, "/api/ask/stream", askRequest{Query: "react?"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		events, done := parseEvents(t, rec.Body.String())
		require.NotEmpty(t, events)
		assert.True(t, done)

		assert.Equal(t, "metadata", events[0].Type)
		require.NotNil(t, events[0].Intent)
		assert.Equal(t, []string{"React"}, events[0].Intent.Tags)
		assert.Equal(t, 1, events[0].LogCount)

		var answer strings.Builder
		for _, event := range events[1:] {
			require.Equal(t, "content", event.Type)
			answer.WriteString(event.Content)
		}
		assert.Equal(t, "streamed", answer.String())
	})

	t.Run("stream error event", func(t *testing.T) {
		answerGen := mock.NewMockGenerator("")
		answerGen.GenerateFunc = func(context.Context, string, float64) (string, error) {
			return "", fmt.Errorf("connection reset")
		}
		server, repo := setupServer(t, intentGenWithTags("React"), answerGen)
		addLog(t, repo, "log-a", "entry", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "React")

		rec := postJSON(t, server, "/api/ask/stream", askRequest{Query: "q"})

		events, done := parseEvents(t, rec.Body.String())
		assert.False(t, done)
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, "error", last.Type)
		assert.Contains(t, last.Error, "answer generation failed")
	})
}

func TestHandleHealth(t *testing.T) {
	server, repo := setupServer(t, intentGenWithTags(), mock.NewMockGenerator("x"))
	addLog(t, repo, "log-a", "entry", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "Mock", body.LLMProvider)
	assert.True(t, body.DatabaseConnected)
	assert.Equal(t, 1, body.Logs)
}
