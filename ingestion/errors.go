package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a log repository is not provided.
	ErrRepositoryRequired = errors.New("log repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyContent is returned when an entry has no content to ingest.
	ErrEmptyContent = errors.New("entry content is empty")
)
