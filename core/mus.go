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
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types persisted by the storage layer.
// Timestamps are stored as Unix microseconds.
var (
	TagMUS          = tagMUS{}
	TagsMUS         = ord.NewSliceSer[Tag](TagMUS)
	LogRecordMUS    = logRecordMUS{}
	LogEmbeddingMUS = logEmbeddingMUS{}

	vectorMUS = ord.NewSliceSer[float32](raw.Float32)
	timeMUS   = timeMicroMUS{}
)

var (
	_ mus.Serializer[Tag]          = TagMUS
	_ mus.Serializer[LogRecord]    = LogRecordMUS
	_ mus.Serializer[LogEmbedding] = LogEmbeddingMUS
)

type timeMicroMUS struct{}

func (timeMicroMUS) Marshal(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMicroMUS) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	t = time.UnixMicro(micro).UTC()
	return
}

func (timeMicroMUS) Size(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMicroMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

type tagMUS struct{}

func (tagMUS) Marshal(t Tag, bs []byte) (n int) {
	n = ord.String.Marshal(t.Name, bs)
	n += varint.Int.Marshal(int(t.Category), bs[n:])
	return
}

func (tagMUS) Unmarshal(bs []byte) (t Tag, n int, err error) {
	t.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		category int
		n1       int
	)
	category, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	t.Category = TagCategory(category)
	return
}

func (tagMUS) Size(t Tag) (size int) {
	return ord.String.Size(t.Name) + varint.Int.Size(int(t.Category))
}

func (tagMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

type logRecordMUS struct{}

func (logRecordMUS) Marshal(r LogRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.Id, bs)
	n += ord.String.Marshal(r.Content, bs[n:])
	n += timeMUS.Marshal(r.Timestamp, bs[n:])
	n += TagsMUS.Marshal(r.Tags, bs[n:])
	n += varint.Int.Marshal(int(r.Source), bs[n:])
	n += ord.String.Marshal(r.Summary, bs[n:])
	n += timeMUS.Marshal(r.InsertedAt, bs[n:])
	return
}

func (logRecordMUS) Unmarshal(bs []byte) (r LogRecord, n int, err error) {
	var n1 int
	r.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Timestamp, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Tags, n1, err = TagsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var source int
	source, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Source = LogSource(source)
	r.Summary, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (logRecordMUS) Size(r LogRecord) (size int) {
	size = ord.String.Size(r.Id)
	size += ord.String.Size(r.Content)
	size += timeMUS.Size(r.Timestamp)
	size += TagsMUS.Size(r.Tags)
	size += varint.Int.Size(int(r.Source))
	size += ord.String.Size(r.Summary)
	size += timeMUS.Size(r.InsertedAt)
	return
}

func (logRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = LogRecordMUS.Unmarshal(bs)
	return
}

type logEmbeddingMUS struct{}

func (logEmbeddingMUS) Marshal(e LogEmbedding, bs []byte) (n int) {
	n = ord.String.Marshal(e.LogId, bs)
	n += vectorMUS.Marshal(e.Vector, bs[n:])
	return
}

func (logEmbeddingMUS) Unmarshal(bs []byte) (e LogEmbedding, n int, err error) {
	var n1 int
	e.LogId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	e.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (logEmbeddingMUS) Size(e LogEmbedding) (size int) {
	return ord.String.Size(e.LogId) + vectorMUS.Size(e.Vector)
}

func (logEmbeddingMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = LogEmbeddingMUS.Unmarshal(bs)
	return
}
