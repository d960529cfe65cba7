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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

// Commit is an external commit to import as a log entry.
type Commit struct {
	Repository string
	Message    string
	Timestamp  time.Time
}

// ImportStats summarizes one ImportCommits run.
type ImportStats struct {
	Imported int
	Skipped  int
	Failed   int
}

// commitID derives a stable record ID from the commit identity, so the
// same commit imported twice maps to the same record.
func commitID(c Commit) string {
	return core.IDFromContent(c.Repository + "\x00" + c.Timestamp.UTC().Format(time.RFC3339) + "\x00" + c.Message)
}

// ImportCommits ingests external commits as log entries. IDs are derived
// from commit content, so re-running an import skips commits already
// stored instead of duplicating them. A commit that fails to store is
// counted and logged; the rest of the batch proceeds.
func (p *Pipeline) ImportCommits(ctx context.Context, commits []Commit) (*ImportStats, error) {
	stats := &ImportStats{}

	var embedIDs []string
	for _, commit := range commits {
		message := strings.TrimSpace(commit.Message)
		if message == "" {
			stats.Skipped++
			continue
		}

		id := commitID(commit)
		_, err := p.repository.GetLogRecord(ctx, id)
		if err == nil {
			stats.Skipped++
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return stats, fmt.Errorf("checking for existing commit: %w", err)
		}

		content := message
		if commit.Repository != "" {
			content = fmt.Sprintf("[%s] %s", commit.Repository, message)
		}
		tags, summary := p.enricher.enrich(ctx, content)

		record := &core.LogRecord{
			Id:        id,
			Content:   content,
			Timestamp: commit.Timestamp.UTC(),
			Tags:      tags,
			Source:    core.SourceCommit,
			Summary:   summary,
		}
		if record.Timestamp.IsZero() {
			record.Timestamp = time.Now().UTC()
		}

		if _, err := p.repository.AddLogRecords(ctx, record); err != nil {
			p.logger.Error("error importing commit", "id", id, "err", err)
			stats.Failed++
			continue
		}

		embedIDs = append(embedIDs, id)
		stats.Imported++
	}

	if len(embedIDs) > 0 {
		p.submitEmbedding(embedIDs...)
	}

	p.logger.Info("commit import complete",
		"imported", stats.Imported, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}
