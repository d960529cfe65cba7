// Package ingestion provides pipeline orchestration for adding log entries.
//
// The Pipeline type manages the ingestion workflow for log entries:
//   - Extracting tags and a summary from the entry text
//   - Adding records to storage
//   - Generating embeddings asynchronously
//
// Embedding is performed on a worker pool to keep ingestion latency low.
// Errors during async processing are logged but do not fail the ingestion
// operation.
package ingestion
