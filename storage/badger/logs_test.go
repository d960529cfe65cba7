package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) storage.LogRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func makeRecord(id, content string, ts time.Time, tags ...core.Tag) *core.LogRecord {
	return &core.LogRecord{
		Id:        id,
		Content:   content,
		Timestamp: ts,
		Tags:      tags,
		Source:    core.SourceManual,
	}
}

func TestAddLogRecords(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Add(-time.Hour)

	t.Run("adds and populates inserted-at", func(t *testing.T) {
		added, err := repo.AddLogRecords(ctx, makeRecord("r1", "first entry", now))
		require.NoError(t, err)
		require.Len(t, added, 1)
		assert.False(t, added[0].InsertedAt.IsZero())

		got, err := repo.GetLogRecord(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "first entry", got.Content)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		_, err := repo.AddLogRecords(ctx, makeRecord("r1", "again", now))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("invalid record rejected", func(t *testing.T) {
		_, err := repo.AddLogRecords(ctx, makeRecord("r2", "", now))
		assert.ErrorIs(t, err, core.ErrInvalidLogRecord)
	})
}

func TestGetLogRecord_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetLogRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetLogRecords_SkipsMissing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Add(-time.Hour)

	_, err := repo.AddLogRecords(ctx, makeRecord("a", "entry a", now))
	require.NoError(t, err)

	records, err := repo.GetLogRecords(ctx, "a", "missing", "also-missing")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Id)
}

func TestGetLogsByDateRange(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := repo.AddLogRecords(ctx,
		makeRecord("old", "before range", base.Add(-48*time.Hour)),
		makeRecord("mid1", "inside range", base),
		makeRecord("mid2", "also inside", base.Add(6*time.Hour)),
		makeRecord("edge", "at the end bound", base.Add(24*time.Hour)),
		makeRecord("new", "after range", base.Add(72*time.Hour)),
	)
	require.NoError(t, err)

	records, err := repo.GetLogsByDateRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Descending timestamp order, both bounds inclusive
	assert.Equal(t, "edge", records[0].Id)
	assert.Equal(t, "mid2", records[1].Id)
	assert.Equal(t, "mid1", records[2].Id)

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := repo.GetLogsByDateRange(ctx, base, base.Add(-time.Hour))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestGetLogsByTags(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Add(-time.Hour)

	_, err := repo.AddLogRecords(ctx,
		makeRecord("r1", "react hooks refactor", now.Add(-2*time.Hour),
			core.Tag{Name: "react", Category: core.CategoryFramework}),
		makeRecord("r2", "react native build", now.Add(-1*time.Hour),
			core.Tag{Name: "React Native", Category: core.CategoryFramework}),
		makeRecord("r3", "cors debugging", now,
			core.Tag{Name: "CORS", Category: core.CategoryConcept},
			core.Tag{Name: "react", Category: core.CategoryFramework}),
	)
	require.NoError(t, err)

	t.Run("case-insensitive exact name", func(t *testing.T) {
		records, err := repo.GetLogsByTags(ctx, []string{"React"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		// "React Native" must not match "React"
		assert.Equal(t, "r3", records[0].Id)
		assert.Equal(t, "r1", records[1].Id)
	})

	t.Run("multiple names dedupe", func(t *testing.T) {
		records, err := repo.GetLogsByTags(ctx, []string{"react", "cors"})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("no match", func(t *testing.T) {
		records, err := repo.GetLogsByTags(ctx, []string{"rust"})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestEmbeddings(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Add(-time.Hour)

	_, err := repo.AddLogRecords(ctx,
		makeRecord("e1", "entry one", now,
			core.Tag{Name: "go", Category: core.CategoryLanguage}),
		makeRecord("e2", "entry two", now.Add(time.Minute)),
	)
	require.NoError(t, err)

	t.Run("put for missing record fails", func(t *testing.T) {
		err := repo.PutEmbedding(ctx, "missing", []float32{1, 0})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("put and scan", func(t *testing.T) {
		require.NoError(t, repo.PutEmbedding(ctx, "e1", []float32{1, 0, 0}))
		require.NoError(t, repo.PutEmbedding(ctx, "e2", []float32{0, 1, 0}))

		rows, err := repo.GetAllEmbeddings(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byID := make(map[string]*core.EmbeddedLog)
		for _, row := range rows {
			byID[row.Id] = row
		}
		require.Contains(t, byID, "e1")
		assert.Equal(t, []float32{1, 0, 0}, byID["e1"].Vector)
		assert.Equal(t, "entry one", byID["e1"].Content)
		assert.Len(t, byID["e1"].Tags, 1)
	})

	t.Run("record without embedding not in scan", func(t *testing.T) {
		_, err := repo.AddLogRecords(ctx, makeRecord("e3", "no vector yet", now))
		require.NoError(t, err)

		rows, err := repo.GetAllEmbeddings(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestGetRecentLogs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-24 * time.Hour)

	for i, id := range []string{"a", "b", "c", "d"} {
		_, err := repo.AddLogRecords(ctx,
			makeRecord(id, "entry "+id, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	records, err := repo.GetRecentLogs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "d", records[0].Id)
	assert.Equal(t, "c", records[1].Id)
	assert.Equal(t, "b", records[2].Id)

	t.Run("limit beyond corpus", func(t *testing.T) {
		records, err := repo.GetRecentLogs(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := repo.GetRecentLogs(ctx, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestCountLogs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	count, err := repo.CountLogs(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.AddLogRecords(ctx,
		makeRecord("c1", "one", time.Now().UTC().Add(-time.Hour)),
		makeRecord("c2", "two", time.Now().UTC().Add(-time.Minute)),
	)
	require.NoError(t, err)

	count, err = repo.CountLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
