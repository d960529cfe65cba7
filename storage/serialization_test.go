package storage

import (
	"testing"
	"time"

	"github.com/poiesic/brainlog/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecordRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := &core.LogRecord{
		Id:        "a1b2c3",
		Content:   "wired up the payment webhook retries",
		Timestamp: now.Add(-2 * time.Hour),
		Tags: []core.Tag{
			{Name: "Go", Category: core.CategoryLanguage},
			{Name: "webhook", Category: core.CategoryConcept},
		},
		Source:     core.SourceManual,
		Summary:    "payment webhook retries",
		InsertedAt: now,
	}

	data := MarshalLogRecord(record)
	decoded, err := UnmarshalLogRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestLogRecordEmptyOptionalFields(t *testing.T) {
	record := &core.LogRecord{
		Id:         "x",
		Content:    "untagged entry",
		Timestamp:  time.Unix(0, 0).UTC(),
		Source:     core.SourceCommit,
		InsertedAt: time.Unix(0, 0).UTC(),
	}

	decoded, err := UnmarshalLogRecord(MarshalLogRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.Id, decoded.Id)
	assert.Empty(t, decoded.Tags)
	assert.Empty(t, decoded.Summary)
}

func TestLogEmbeddingRoundTrip(t *testing.T) {
	embedding := &core.LogEmbedding{
		LogId:  "a1b2c3",
		Vector: []float32{0.25, -0.5, 0.125, 1.0},
	}

	decoded, err := UnmarshalLogEmbedding(MarshalLogEmbedding(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestIDRoundTrip(t *testing.T) {
	id, err := UnmarshalID(MarshalID("record-7"))
	require.NoError(t, err)
	assert.Equal(t, "record-7", id)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	data := MarshalLogRecord(&core.LogRecord{
		Id:        "y",
		Content:   "something",
		Timestamp: time.Unix(0, 0).UTC(),
		Source:    core.SourceManual,
	})

	_, err := UnmarshalLogRecord(data[:len(data)/2])
	assert.Error(t, err)
}
