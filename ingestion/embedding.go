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
	"fmt"
	"log/slog"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/storage"
)

// embeddingProcessor generates and stores embeddings for log records.
type embeddingProcessor struct {
	repository storage.LogRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

func newEmbeddingProcessor(repository storage.LogRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		repository: repository,
		embedder:   embedder,
		logger:     logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the stored records identified by ids and persists the
// vectors. Records missing from storage are skipped.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...string) error {
	records, err := ep.repository.GetLogRecords(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving log records", "err", err)
		return err
	}
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Content
	}

	ep.logger.Debug("generating embeddings", "records", len(texts))
	vectors, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(records), len(vectors))
	}

	for i, record := range records {
		if err := ep.repository.PutEmbedding(ctx, record.Id, vectors[i]); err != nil {
			ep.logger.Error("error storing embedding", "id", record.Id, "err", err)
			return err
		}
	}
	return nil
}
