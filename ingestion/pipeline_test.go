package ingestion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/brainlog/ai/mock"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
	"github.com/poiesic/brainlog/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPipeline(t *testing.T, gen *mock.MockGenerator) (*Pipeline, storage.LogRepository) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	pipeline, err := NewPipeline(repo, mock.NewMockEmbedder(), gen, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repo
}

func enrichingGenerator() *mock.MockGenerator {
	gen := mock.NewMockGenerator("")
	gen.JSONResponse = map[string]any{
		"tags": []any{
			map[string]any{"name": "React", "category": "framework"},
			map[string]any{"name": "CORS", "category": "concept"},
		},
		"summary": "fixed a CORS bug in the React frontend",
	}
	return gen
}

func TestAddEntry(t *testing.T) {
	t.Run("stores enriched record and embedding", func(t *testing.T) {
		pipeline, repo := setupPipeline(t, enrichingGenerator())
		ts := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

		record, err := pipeline.AddEntry(context.Background(), "fixed the CORS bug in the react app", ts)
		require.NoError(t, err)
		pipeline.Wait()

		assert.NotEmpty(t, record.Id)
		assert.Equal(t, core.SourceManual, record.Source)
		assert.Equal(t, "fixed a CORS bug in the React frontend", record.Summary)
		require.Len(t, record.Tags, 2)
		assert.Equal(t, core.CategoryFramework, record.Tags[0].Category)

		// Embedding landed in storage.
		embedded, err := repo.GetAllEmbeddings(context.Background())
		require.NoError(t, err)
		require.Len(t, embedded, 1)
		assert.Equal(t, record.Id, embedded[0].Id)

		// Tag index is live.
		byTag, err := repo.GetLogsByTags(context.Background(), []string{"cors"})
		require.NoError(t, err)
		require.Len(t, byTag, 1)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		pipeline, _ := setupPipeline(t, enrichingGenerator())

		_, err := pipeline.AddEntry(context.Background(), "   \n  ", time.Time{})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("zero timestamp defaults to now", func(t *testing.T) {
		pipeline, _ := setupPipeline(t, enrichingGenerator())

		record, err := pipeline.AddEntry(context.Background(), "quick note", time.Time{})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), record.Timestamp, time.Minute)
	})

	t.Run("enrichment failure degrades to untagged entry", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.GenerateJSONFunc = func(context.Context, string, float64) (map[string]any, error) {
			return nil, fmt.Errorf("model unavailable")
		}
		pipeline, _ := setupPipeline(t, gen)

		record, err := pipeline.AddEntry(context.Background(), "first line of the entry\nsecond line", time.Time{})
		require.NoError(t, err)
		assert.Empty(t, record.Tags)
		assert.Equal(t, "first line of the entry", record.Summary)
	})
}

func TestImportCommits(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("imports with stable ids", func(t *testing.T) {
		pipeline, repo := setupPipeline(t, enrichingGenerator())

		commits := []Commit{
			{Repository: "brainlog", Message: "add sse streaming", Timestamp: ts},
			{Repository: "brainlog", Message: "fix tag index ordering", Timestamp: ts.Add(time.Hour)},
		}

		stats, err := pipeline.ImportCommits(context.Background(), commits)
		require.NoError(t, err)
		pipeline.Wait()

		assert.Equal(t, 2, stats.Imported)
		assert.Zero(t, stats.Skipped)

		count, err := repo.CountLogs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		record, err := repo.GetLogRecord(context.Background(), commitID(commits[0]))
		require.NoError(t, err)
		assert.Equal(t, core.SourceCommit, record.Source)
		assert.Equal(t, "[brainlog] add sse streaming", record.Content)
	})

	t.Run("rerun skips existing commits", func(t *testing.T) {
		pipeline, repo := setupPipeline(t, enrichingGenerator())

		commits := []Commit{
			{Repository: "brainlog", Message: "add sse streaming", Timestamp: ts},
		}

		_, err := pipeline.ImportCommits(context.Background(), commits)
		require.NoError(t, err)

		stats, err := pipeline.ImportCommits(context.Background(), commits)
		require.NoError(t, err)
		pipeline.Wait()

		assert.Zero(t, stats.Imported)
		assert.Equal(t, 1, stats.Skipped)

		count, err := repo.CountLogs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("blank messages skipped", func(t *testing.T) {
		pipeline, _ := setupPipeline(t, enrichingGenerator())

		stats, err := pipeline.ImportCommits(context.Background(), []Commit{
			{Repository: "brainlog", Message: "  ", Timestamp: ts},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Skipped)
	})
}

func TestEnricher(t *testing.T) {
	t.Run("unknown category maps to other", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.JSONResponse = map[string]any{
			"tags":    []any{map[string]any{"name": "PostgreSQL", "category": "database"}},
			"summary": "s",
		}
		e, err := newEnricher(gen, nil)
		require.NoError(t, err)

		tags, _ := e.enrich(context.Background(), "tuned postgres indexes")
		require.Len(t, tags, 1)
		assert.Equal(t, core.CategoryOther, tags[0].Category)
	})

	t.Run("nameless tags dropped", func(t *testing.T) {
		gen := mock.NewMockGenerator("")
		gen.JSONResponse = map[string]any{
			"tags": []any{map[string]any{"name": "  ", "category": "concept"}},
		}
		e, err := newEnricher(gen, nil)
		require.NoError(t, err)

		tags, summary := e.enrich(context.Background(), "short entry")
		assert.Empty(t, tags)
		assert.Equal(t, "short entry", summary)
	})
}

func TestFallbackSummary(t *testing.T) {
	assert.Equal(t, "one line", fallbackSummary("one line"))
	assert.Equal(t, "first", fallbackSummary("first\nsecond"))

	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}
	assert.Len(t, []rune(fallbackSummary(long)), summaryFallbackRunes)
}
