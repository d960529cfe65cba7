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


// Package brainlog answers free-text questions over a personal corpus of
// timestamped work-log entries. The Database type is the composition root:
// it owns the storage backend and AI configuration and hands out the
// ingestion pipeline and the question-answering agent built on them.
package brainlog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/brainlog/agent"
	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/compose"
	"github.com/poiesic/brainlog/ingestion"
	"github.com/poiesic/brainlog/storage"
	"github.com/poiesic/brainlog/storage/badger"
)

type Database struct {
	backend  *badger.Backend
	logRepo  storage.LogRepository
	aiConfig *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger

	mu         sync.Mutex
	generators map[string]ai.Generator
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithInMemory keeps all storage in memory. Intended for tests and
// throwaway sessions; filePath is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the log store at filePath and prepares the AI
// backends. Provider credentials are not checked here; they are needed
// only once an agent or ingestion pipeline is requested.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	logRepo, err := badger.NewLogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:    backend,
		logRepo:    logRepo,
		aiConfig:   options.aiConfig,
		embedder:   NewEmbedder(options.aiConfig),
		logger:     slog.Default(),
		generators: make(map[string]ai.Generator),
	}, nil
}

// LogRepository exposes the underlying log store.
func (db *Database) LogRepository() storage.LogRepository {
	return db.logRepo
}

// Generator returns the generative backend for the given provider
// override (empty for the configured default), selecting and caching it
// on first use.
func (db *Database) Generator(ctx context.Context, providerOverride string) (ai.Generator, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if generator, ok := db.generators[providerOverride]; ok {
		return generator, nil
	}
	generator, err := SelectGenerator(ctx, db.aiConfig, providerOverride)
	if err != nil {
		return nil, err
	}
	db.logger.Info("selected generative provider", "provider", generator.Name())
	db.generators[providerOverride] = generator
	return generator, nil
}

// ProviderName reports the default generative provider's display name, or
// "none" when no provider is usable.
func (db *Database) ProviderName(ctx context.Context) string {
	generator, err := db.Generator(ctx, "")
	if err != nil {
		return "none"
	}
	return generator.Name()
}

// NewAgent builds the question-answering agent with the database's
// storage, embedder and generator, applying the configured timeouts.
// providerOverride forces a specific generative provider for this agent;
// empty uses the configured default.
func (db *Database) NewAgent(ctx context.Context, providerOverride string) (*agent.Agent, error) {
	generator, err := db.Generator(ctx, providerOverride)
	if err != nil {
		return nil, err
	}

	return agent.NewAgent(
		agent.NewExtractor(generator, agent.WithIntentTimeout(db.aiConfig.IntentTimeout)),
		agent.NewCoordinator(db.logRepo, db.embedder, agent.WithEmbedTimeout(db.aiConfig.EmbedTimeout)),
		agent.NewSynthesizer(generator, agent.WithAnswerTimeout(db.aiConfig.AnswerTimeout)),
	), nil
}

// NewComposer builds the derived-content composer (daily summaries, blog
// posts, skill analyses, titles) over the database's storage and the
// default generative provider.
func (db *Database) NewComposer(ctx context.Context) (*compose.Composer, error) {
	generator, err := db.Generator(ctx, "")
	if err != nil {
		return nil, err
	}
	return compose.NewComposer(db.logRepo, generator,
		compose.WithTimeout(db.aiConfig.AnswerTimeout)), nil
}

// NewIngestionPipeline builds an ingestion pipeline over the database's
// storage and AI backends.
func (db *Database) NewIngestionPipeline(ctx context.Context, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	generator, err := db.Generator(ctx, "")
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(db.logRepo, db.embedder, generator, opts...)
}

// Close closes the repository and the backing store.
func (db *Database) Close() error {
	if err := db.logRepo.Close(); err != nil {
		db.logger.Error("error closing log repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
