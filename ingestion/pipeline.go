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


package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

// Pipeline orchestrates the ingestion of log entries. Each entry is
// enriched with tags and a summary, stored, and embedded. Embedding runs
// asynchronously on a worker pool; enrichment is synchronous because the
// tag index is written together with the record.
type Pipeline struct {
	repository    storage.LogRepository
	embeddingPool *ants.Pool
	embeddingProc *embeddingProcessor
	enricher      *enricher
	pending       sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.LogRepository,
	embedder ai.Embedder,
	generator ai.Generator,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository:    repository,
		embeddingPool: pool,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.embeddingProc, err = newEmbeddingProcessor(repository, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.enricher, err = newEnricher(generator, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	return p, nil
}

// AddEntry enriches, stores and asynchronously embeds a single log entry.
// A zero timestamp means now. The returned record carries the extracted
// tags and summary; its embedding may not be queryable yet when this
// returns.
func (p *Pipeline) AddEntry(ctx context.Context, content string, timestamp time.Time) (*core.LogRecord, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	tags, summary := p.enricher.enrich(ctx, content)

	record := &core.LogRecord{
		Id:        core.NewLogID(),
		Content:   content,
		Timestamp: timestamp,
		Tags:      tags,
		Source:    core.SourceManual,
		Summary:   summary,
	}

	added, err := p.repository.AddLogRecords(ctx, record)
	if err != nil {
		return nil, err
	}

	p.submitEmbedding(added[0].Id)
	return added[0], nil
}

// submitEmbedding queues async embedding work for the given record IDs.
// Errors are logged, never surfaced; a record without an embedding is
// still reachable through the date and tag channels.
func (p *Pipeline) submitEmbedding(ids ...string) {
	p.pending.Add(1)
	err := p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding work", "err", err)
	}
}

// Wait blocks until all queued async work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release waits for in-flight work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.pending.Wait()
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
