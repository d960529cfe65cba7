package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Key prefixes for different data types
const (
	logRecordPrefix    = "logrec"
	logDatePrefix      = "logrecd"
	logTagPrefix       = "logrect"
	logEmbeddingPrefix = "logemb"
)

// keySep separates variable-length key components. Tag names may contain
// ':' so a NUL byte is used instead.
const keySep = "\x00"

// makeLogRecordKey generates a key for a log record by ID.
func makeLogRecordKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", logRecordPrefix, id))
}

// makeEmbeddingKey generates a key for a log embedding by record ID.
func makeEmbeddingKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", logEmbeddingPrefix, id))
}

// makeDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDateKey(timestamp time.Time, id string) []byte {
	prefix := logDatePrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDateKey(timestamp time.Time) []byte {
	prefix := logDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeTagKey generates a composite key for the tag index. Tag names are
// lowercased so lookups are case-insensitive exact-name matches.
// Format: prefix:name\x00id
func makeTagKey(name, id string) []byte {
	return []byte(logTagPrefix + ":" + strings.ToLower(name) + keySep + id)
}

// makePartialTagKey generates the iteration prefix for one tag name.
func makePartialTagKey(name string) []byte {
	return []byte(logTagPrefix + ":" + strings.ToLower(name) + keySep)
}
