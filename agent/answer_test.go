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

func retrievedLog(id, content string, ts time.Time, score float64) *core.RetrievedLog {
	return &core.RetrievedLog{
		Record: &core.LogRecord{Id: id, Content: content, Timestamp: ts, Source: core.SourceManual},
		Score:  score,
	}
}

func TestBuildAnswerPrompt(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("logs rendered with calendar date", func(t *testing.T) {
		prompt := buildAnswerPrompt("what happened?", []*core.RetrievedLog{
			retrievedLog("a", "shipped the exporter", ts, 1.0),
		}, nil)

		assert.Contains(t, prompt, "[2025-03-10] shipped the exporter")
		assert.Contains(t, prompt, "Question: what happened?")
	})

	t.Run("caps context logs", func(t *testing.T) {
		var logs []*core.RetrievedLog
		for i := 0; i < 20; i++ {
			logs = append(logs, retrievedLog(fmt.Sprintf("log-%02d", i), fmt.Sprintf("entry %02d", i), ts, 1.0))
		}

		prompt := buildAnswerPrompt("q", logs, nil)

		assert.Contains(t, prompt, "entry 14")
		assert.NotContains(t, prompt, "entry 15")
	})

	t.Run("empty retrieval noted", func(t *testing.T) {
		prompt := buildAnswerPrompt("q", nil, nil)
		assert.Contains(t, prompt, "(no matching log entries)")
	})

	t.Run("history keeps last turns with speakers", func(t *testing.T) {
		var history []core.Message
		for i := 0; i < 12; i++ {
			history = append(history,
				core.Message{Role: core.RoleUser, Content: fmt.Sprintf("question %02d", i)},
				core.Message{Role: core.RoleAssistant, Content: fmt.Sprintf("answer %02d", i)},
			)
		}

		prompt := buildAnswerPrompt("q", nil, history)

		// 24 messages, only the last 10 survive.
		assert.NotContains(t, prompt, "question 06")
		assert.Contains(t, prompt, "User: question 07")
		assert.Contains(t, prompt, "Assistant: answer 11")
	})

	t.Run("no history block when empty", func(t *testing.T) {
		prompt := buildAnswerPrompt("q", nil, nil)
		assert.NotContains(t, prompt, "Conversation so far")
	})
}

func TestSynthesizerAnswer(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("returns model answer", func(t *testing.T) {
		gen := mock.NewMockGenerator("You shipped the exporter.")
		s := NewSynthesizer(gen)

		answer, err := s.Answer(context.Background(), "what happened?",
			[]*core.RetrievedLog{retrievedLog("a", "shipped the exporter", ts, 1.0)}, nil)

		require.NoError(t, err)
		assert.Equal(t, "You shipped the exporter.", answer)
		assert.Contains(t, gen.LastPrompt, "shipped the exporter")
	})

	t.Run("wraps generation failure", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.GenerateFunc = func(context.Context, string, float64) (string, error) {
			return "", fmt.Errorf("rate limited")
		}

		_, err := NewSynthesizer(gen).Answer(context.Background(), "q", nil, nil)
		assert.ErrorIs(t, err, ErrGeneration)
	})
}

func TestSynthesizerAnswerStream(t *testing.T) {
	t.Run("fragments concatenate to the full answer", func(t *testing.T) {
		gen := mock.NewMockGenerator("streamed answer text")
		s := NewSynthesizer(gen)

		var b strings.Builder
		for fragment, err := range s.AnswerStream(context.Background(), "q", nil, nil) {
			require.NoError(t, err)
			b.WriteString(fragment)
		}
		assert.Equal(t, "streamed answer text", b.String())
	})

	t.Run("stream error wrapped", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.GenerateFunc = func(context.Context, string, float64) (string, error) {
			return "", fmt.Errorf("connection reset")
		}

		var streamErr error
		for _, err := range NewSynthesizer(gen).AnswerStream(context.Background(), "q", nil, nil) {
			if err != nil {
				streamErr = err
				break
			}
		}
		assert.ErrorIs(t, streamErr, ErrGeneration)
	})
}
