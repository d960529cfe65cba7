package storage

import (
	"context"
	"time"

	"github.com/poiesic/brainlog/core"
)

// LogRepository provides operations for storing and querying log records and
// their embeddings. Implementations must be thread-safe and support
// concurrent access.
type LogRepository interface {
	// AddLogRecords adds one or more log records to storage.
	// Records must carry their own IDs; sets InsertedAt if not already set.
	// Returns the records with timestamps populated.
	AddLogRecords(ctx context.Context, records ...*core.LogRecord) ([]*core.LogRecord, error)

	// PutEmbedding stores the embedding vector for a log record,
	// replacing any previous vector for the same record.
	PutEmbedding(ctx context.Context, logID string, vector []float32) error

	// GetLogRecord retrieves a single log record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetLogRecord(ctx context.Context, id string) (*core.LogRecord, error)

	// GetLogRecords retrieves multiple log records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetLogRecords(ctx context.Context, ids ...string) ([]*core.LogRecord, error)

	// GetLogsByDateRange retrieves log records within a time range,
	// inclusive on both bounds, ordered by timestamp descending.
	GetLogsByDateRange(ctx context.Context, start, end time.Time) ([]*core.LogRecord, error)

	// GetLogsByTags retrieves log records whose tag-name set intersects the
	// given names under case-insensitive exact comparison (not substring).
	// Ordered by timestamp descending.
	GetLogsByTags(ctx context.Context, names []string) ([]*core.LogRecord, error)

	// GetAllEmbeddings retrieves the entire embedding corpus as rows of
	// (id, vector, content, timestamp, tags). There is no vector index;
	// callers scan linearly.
	GetAllEmbeddings(ctx context.Context) ([]*core.EmbeddedLog, error)

	// GetRecentLogs retrieves the N most recent log records, ordered by
	// timestamp descending. Returns up to limit records.
	GetRecentLogs(ctx context.Context, limit int) ([]*core.LogRecord, error)

	// CountLogs returns the number of stored log records.
	CountLogs(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
