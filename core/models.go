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


package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// NewLogID generates a fresh unique identifier for a manually created log entry.
func NewLogID() string {
	return uuid.NewString()
}

// IDFromContent generates a deterministic identifier from text content using
// BLAKE2b hashing. Identical content always produces the same identifier,
// which makes imports of external records (e.g. commits) idempotent.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// TagCategory classifies a technical tag attached to a log entry.
type TagCategory int

const (
	// CategoryLanguage marks programming languages (Go, Python, ...).
	CategoryLanguage TagCategory = iota + 1
	// CategoryFramework marks frameworks and libraries (React, FastAPI, ...).
	CategoryFramework
	// CategoryConcept marks general technical concepts (CORS, RAG, ...).
	CategoryConcept
	// CategoryTask marks kinds of work (debugging, refactoring, ...).
	CategoryTask
	// CategoryOther marks everything else.
	CategoryOther
)

// String returns the canonical name of the category.
func (c TagCategory) String() string {
	switch c {
	case CategoryLanguage:
		return "Language"
	case CategoryFramework:
		return "Framework"
	case CategoryConcept:
		return "Concept"
	case CategoryTask:
		return "Task"
	case CategoryOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// ParseTagCategory maps a category name to its TagCategory value.
// Unrecognized names map to CategoryOther.
func ParseTagCategory(name string) TagCategory {
	switch name {
	case "Language":
		return CategoryLanguage
	case "Framework":
		return CategoryFramework
	case "Concept":
		return CategoryConcept
	case "Task":
		return CategoryTask
	default:
		return CategoryOther
	}
}

// Tag is a technical keyword attached to a log entry.
type Tag struct {
	Name     string
	Category TagCategory
}

// LogSource identifies how a log entry entered the corpus.
type LogSource int

const (
	// SourceManual represents an entry written by the user.
	SourceManual LogSource = iota + 1
	// SourceCommit represents an entry imported from an external commit.
	SourceCommit
)

// String returns the wire name of the source.
func (s LogSource) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceCommit:
		return "external-commit"
	default:
		return "unknown"
	}
}

// LogRecord is a single timestamped work-log entry. Records are immutable
// once ingested; embeddings and tags are populated during ingestion.
type LogRecord struct {
	Id         string
	Content    string
	Timestamp  time.Time // When the work happened
	Tags       []Tag
	Source     LogSource
	Summary    string    // Short title, optional
	InsertedAt time.Time // When the record entered the database
}

// LogEmbedding associates a log record with its document-level embedding
// vector. Exactly one embedding exists per record once ingestion completes.
type LogEmbedding struct {
	LogId  string
	Vector []float32
}

// DateRange is an inclusive pair of calendar dates in "YYYY-MM-DD" form.
// The strings are kept raw as produced by the intent model; parsing happens
// in the retrieval date channel so malformed dates degrade that channel only.
type DateRange struct {
	Start string
	End   string
}

// Intent is the structured retrieval intent extracted from a free-text
// query. It is constructed fresh per query and never persisted.
type Intent struct {
	DateRange     *DateRange
	Tags          []string
	SemanticQuery string
	NeedsSemantic bool
}

// DefaultIntent returns the intent used when extraction fails: no filters,
// semantic search over the raw query.
func DefaultIntent(query string) Intent {
	return Intent{
		SemanticQuery: query,
		NeedsSemantic: true,
	}
}

// RetrievedLog is a log record paired with its accumulated retrieval score.
// Scores are additive across retrieval channels and may exceed 1.0.
type RetrievedLog struct {
	Record *LogRecord
	Score  float64
}

// EmbeddedLog is one row of the embedding corpus scan: the stored vector
// together with the record fields needed to build a RetrievedLog.
type EmbeddedLog struct {
	Id        string
	Vector    []float32
	Content   string
	Timestamp time.Time
	Tags      []Tag
}

// Message roles in a conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history supplied by the caller.
type Message struct {
	Role    string
	Content string
}
