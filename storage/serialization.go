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


package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/brainlog/core"
)

// MarshalID serializes a log record ID to bytes.
func MarshalID(id string) []byte {
	buf := make([]byte, ord.String.Size(id))
	ord.String.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes a log record ID from bytes.
func UnmarshalID(data []byte) (string, error) {
	id, _, err := ord.String.Unmarshal(data)
	return id, err
}

// MarshalLogRecord serializes a LogRecord to bytes.
func MarshalLogRecord(record *core.LogRecord) []byte {
	buf := make([]byte, core.LogRecordMUS.Size(*record))
	core.LogRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalLogRecord deserializes a LogRecord from bytes.
func UnmarshalLogRecord(data []byte) (*core.LogRecord, error) {
	record, _, err := core.LogRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalLogEmbedding serializes a LogEmbedding to bytes.
func MarshalLogEmbedding(embedding *core.LogEmbedding) []byte {
	buf := make([]byte, core.LogEmbeddingMUS.Size(*embedding))
	core.LogEmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalLogEmbedding deserializes a LogEmbedding from bytes.
func UnmarshalLogEmbedding(data []byte) (*core.LogEmbedding, error) {
	embedding, _, err := core.LogEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}
