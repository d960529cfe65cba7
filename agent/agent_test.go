package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/brainlog/ai/mock"
	"github.com/poiesic/brainlog/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAgent(t *testing.T, intentGen, answerGen *mock.MockGenerator) (*Agent, func(id, content string, ts time.Time, tags ...string)) {
	t.Helper()
	repo := setupRepo(t)

	agent := NewAgent(
		NewExtractor(intentGen),
		NewCoordinator(repo, mock.NewMockEmbedder()),
		NewSynthesizer(answerGen),
	)
	agent.now = func() time.Time {
		return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	}

	return agent, func(id, content string, ts time.Time, tags ...string) {
		addLog(t, repo, id, content, ts, tags...)
	}
}

func TestAgentAsk(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		intentGen := mock.NewMockGenerator("")
		intentGen.JSONResponse = map[string]any{
			"date_range": map[string]any{"start": "2025-03-10", "end": "2025-03-10"},
			"needs_rag":  false,
		}
		answerGen := mock.NewMockGenerator("You deployed the new ingest pipeline.")

		agent, add := setupAgent(t, intentGen, answerGen)
		add("log-a", "deployed the new ingest pipeline", time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC))

		result, err := agent.Ask(context.Background(), "what did I do on March 10?", nil)

		require.NoError(t, err)
		assert.Equal(t, "You deployed the new ingest pipeline.", result.Answer)
		require.Len(t, result.RetrievedLogs, 1)
		assert.Equal(t, "log-a", result.RetrievedLogs[0].Record.Id)
		require.NotNil(t, result.Intent.DateRange)
		// The answer prompt was grounded in the retrieved entry.
		assert.Contains(t, answerGen.LastPrompt, "deployed the new ingest pipeline")
	})

	t.Run("generation failure keeps retrieval evidence", func(t *testing.T) {
		intentGen := mock.NewMockGenerator("")
		intentGen.JSONResponse = map[string]any{"tags": []any{"React"}, "needs_rag": false}
		answerGen := mock.NewMockGenerator("")
		answerGen.GenerateFunc = func(context.Context, string, float64) (string, error) {
			return "", fmt.Errorf("model overloaded")
		}

		agent, add := setupAgent(t, intentGen, answerGen)
		add("log-a", "react hooks refactor", time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), "React")

		result, err := agent.Ask(context.Background(), "react work?", nil)

		assert.ErrorIs(t, err, ErrGeneration)
		require.NotNil(t, result)
		assert.Empty(t, result.Answer)
		require.Len(t, result.RetrievedLogs, 1)
		assert.Equal(t, "log-a", result.RetrievedLogs[0].Record.Id)
	})

	t.Run("history reaches the answer prompt", func(t *testing.T) {
		intentGen := mock.NewMockGenerator("")
		intentGen.JSONResponse = map[string]any{"needs_rag": false}
		answerGen := mock.NewMockGenerator("answer")

		agent, add := setupAgent(t, intentGen, answerGen)
		add("log-a", "entry", time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC))

		history := []core.Message{
			{Role: core.RoleUser, Content: "earlier question"},
			{Role: core.RoleAssistant, Content: "earlier answer"},
		}
		_, err := agent.Ask(context.Background(), "follow-up", history)

		require.NoError(t, err)
		assert.Contains(t, answerGen.LastPrompt, "User: earlier question")
		assert.Contains(t, answerGen.LastPrompt, "Assistant: earlier answer")
	})
}

func TestAgentAskStream(t *testing.T) {
	intentGen := mock.NewMockGenerator("")
	intentGen.JSONResponse = map[string]any{"tags": []any{"React"}, "needs_rag": false}
	answerGen := mock.NewMockGenerator("streamed reply")

	agent, add := setupAgent(t, intentGen, answerGen)
	add("log-a", "react work", time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), "React")

	stream := agent.AskStream(context.Background(), "react work?", nil)

	// Retrieval evidence is available before consuming any fragment.
	require.Len(t, stream.RetrievedLogs, 1)
	assert.Equal(t, []string{"React"}, stream.Intent.Tags)
	assert.Zero(t, answerGen.CallCount())

	var b strings.Builder
	for fragment, err := range stream.Fragments {
		require.NoError(t, err)
		b.WriteString(fragment)
	}
	assert.Equal(t, "streamed reply", b.String())
}
