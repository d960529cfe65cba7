package badger

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

// LogRepository implements storage.LogRepository for BadgerDB.
type LogRepository struct {
	backend *Backend
}

var _ storage.LogRepository = (*LogRepository)(nil)

// NewLogRepository creates a new LogRepository backed by the given backend.
func NewLogRepository(backend *Backend) (storage.LogRepository, error) {
	if backend == nil {
		return nil, storage.ErrInvalidQuery
	}
	return &LogRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *LogRepository) Close() error {
	return nil
}

// AddLogRecords adds one or more log records to storage.
// Records must carry their own IDs. Returns storage.ErrDuplicateKey if a
// record with the same ID already exists.
func (r *LogRepository) AddLogRecords(ctx context.Context, records ...*core.LogRecord) ([]*core.LogRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateLogRecord(record); err != nil {
				return err
			}

			key := makeLogRecordKey(record.Id)
			if _, err := tx.Get(key); err == nil {
				return storage.ErrDuplicateKey
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(key, storage.MarshalLogRecord(record)); err != nil {
				return err
			}

			// Date index
			dateKey := makeDateKey(record.Timestamp, record.Id)
			if err := tx.Set(dateKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			// Tag index, one entry per lowercased tag name
			for _, tag := range record.Tags {
				tagKey := makeTagKey(tag.Name, record.Id)
				if err := tx.Set(tagKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// PutEmbedding stores the embedding vector for a log record.
// Returns storage.ErrNotFound if the record doesn't exist.
func (r *LogRepository) PutEmbedding(ctx context.Context, logID string, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeLogRecordKey(logID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		embedding := &core.LogEmbedding{LogId: logID, Vector: vector}
		if err := tx.Set(makeEmbeddingKey(logID), storage.MarshalLogEmbedding(embedding)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetLogRecord retrieves a single log record by ID.
func (r *LogRepository) GetLogRecord(ctx context.Context, id string) (*core.LogRecord, error) {
	var result *core.LogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readLogRecord(tx, makeLogRecordKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		result = record
		return nil
	}, false)
	return result, err
}

// GetLogRecords retrieves multiple log records by their IDs.
// Missing records are skipped without error.
func (r *LogRepository) GetLogRecords(ctx context.Context, ids ...string) ([]*core.LogRecord, error) {
	var result []*core.LogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readLogRecord(tx, makeLogRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetLogsByDateRange retrieves log records with start <= Timestamp <= end,
// ordered by timestamp descending.
func (r *LogRepository) GetLogsByDateRange(ctx context.Context, start, end time.Time) ([]*core.LogRecord, error) {
	if end.Before(start) {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.LogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDateKey(start)
		// The end bound is inclusive; a partial key one microsecond past it
		// sorts after every index entry at the end timestamp.
		endKey := makePartialDateKey(end.Add(time.Microsecond))

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(logDatePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.Compare(key, endKey) >= 0 {
				break
			}

			var recordID string
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readLogRecord(tx, makeLogRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Index iteration is ascending by timestamp
	slices.Reverse(results)
	return results, nil
}

// GetLogsByTags retrieves log records whose tag names intersect the given
// names, case-insensitively. Ordered by timestamp descending.
func (r *LogRepository) GetLogsByTags(ctx context.Context, names []string) ([]*core.LogRecord, error) {
	seen := make(map[string]bool)
	var results []*core.LogRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			prefix := makePartialTagKey(name)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)

			for iter.Seek(prefix); iter.Valid(); iter.Next() {
				var recordID string
				if err := iter.Item().Value(func(val []byte) error {
					var err error
					recordID, err = storage.UnmarshalID(val)
					return err
				}); err != nil {
					iter.Close()
					return err
				}
				if seen[recordID] {
					continue
				}
				seen[recordID] = true

				record, err := readLogRecord(tx, makeLogRecordKey(recordID))
				if err != nil {
					iter.Close()
					return err
				}
				if record != nil {
					results = append(results, record)
				}
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.LogRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return results, nil
}

// GetAllEmbeddings retrieves the entire embedding corpus joined with the
// record fields needed for scoring. No vector index exists; this is the
// full linear scan the retrieval agent iterates over.
func (r *LogRepository) GetAllEmbeddings(ctx context.Context) ([]*core.EmbeddedLog, error) {
	var results []*core.EmbeddedLog
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(logEmbeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(opts.Prefix); iter.Valid(); iter.Next() {
			var embedding *core.LogEmbedding
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				embedding, err = storage.UnmarshalLogEmbedding(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readLogRecord(tx, makeLogRecordKey(embedding.LogId))
			if err != nil {
				return err
			}
			if record == nil {
				// Orphaned embedding; skip
				continue
			}

			results = append(results, &core.EmbeddedLog{
				Id:        record.Id,
				Vector:    embedding.Vector,
				Content:   record.Content,
				Timestamp: record.Timestamp,
				Tags:      record.Tags,
			})
		}
		return nil
	}, false)
	return results, err
}

// GetRecentLogs retrieves up to limit most recent log records,
// ordered by timestamp descending.
func (r *LogRepository) GetRecentLogs(ctx context.Context, limit int) ([]*core.LogRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.LogRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(logDatePrefix + ":")
		// Seek key past every possible timestamp
		seekKey := append(append([]byte{}, prefix...), bytes.Repeat([]byte{0xff}, 9)...)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(seekKey); iter.Valid() && len(results) < limit; iter.Next() {
			var recordID string
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := readLogRecord(tx, makeLogRecordKey(recordID))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountLogs returns the number of stored log records.
func (r *LogRepository) CountLogs(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(logRecordPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(opts.Prefix); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readLogRecord reads and deserializes a record, returning nil if absent.
func readLogRecord(tx *badger.Txn, key []byte) (*core.LogRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.LogRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalLogRecord(val)
		return err
	})
	return record, err
}
