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


package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

// Channel scores. Scores are additive: a record found by several channels
// accumulates all of their contributions.
const (
	dateChannelScore  = 1.0
	tagChannelScore   = 0.3
	semanticWeight    = 0.7
	semanticThreshold = 0.3
	fallbackScore     = 0.1

	maxResults    = 20
	fallbackLimit = 20
)

const defaultEmbedTimeout = 60 * time.Second

// channelDate et al. name the retrieval channels in merge order. Fusion
// always folds partial results in this order, so result ranking is
// reproducible regardless of which goroutine finishes first.
const (
	channelDate     = "date"
	channelTag      = "tag"
	channelSemantic = "semantic"
	channelFallback = "fallback"
)

type channelHit struct {
	record *core.LogRecord
	score  float64
}

type channelResult struct {
	name string
	hits []channelHit
	err  error
}

// Coordinator fans a query intent out across the retrieval channels and
// fuses their scored results into a single ranked list.
type Coordinator struct {
	repo         storage.LogRepository
	embedder     ai.Embedder
	monitor      RetrievalMonitor
	embedTimeout time.Duration
	logger       *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMonitor attaches a RetrievalMonitor to observe retrieval progress.
func WithMonitor(m RetrievalMonitor) CoordinatorOption {
	return func(c *Coordinator) {
		if m != nil {
			c.monitor = m
		}
	}
}

// WithEmbedTimeout bounds the query embedding call in the semantic channel.
func WithEmbedTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.embedTimeout = d
		}
	}
}

// NewCoordinator creates a Coordinator over the given repository and
// embedder.
func NewCoordinator(repo storage.LogRepository, embedder ai.Embedder, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		repo:         repo,
		embedder:     embedder,
		monitor:      noopMonitor{},
		embedTimeout: defaultEmbedTimeout,
		logger:       slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve runs every channel the intent activates concurrently and fuses
// their results. A failing channel contributes nothing but never fails the
// whole pass; when no channel produces a hit the most recent logs are
// returned at a nominal score so the caller always has something to work
// with.
func (c *Coordinator) Retrieve(ctx context.Context, intent *core.Intent) []*core.RetrievedLog {
	type task struct {
		name string
		run  func(context.Context) ([]channelHit, error)
	}

	var tasks []task
	if intent.DateRange != nil {
		tasks = append(tasks, task{channelDate, func(ctx context.Context) ([]channelHit, error) {
			return c.dateChannel(ctx, intent.DateRange)
		}})
	}
	if len(intent.Tags) > 0 {
		tasks = append(tasks, task{channelTag, func(ctx context.Context) ([]channelHit, error) {
			return c.tagChannel(ctx, intent.Tags)
		}})
	}
	if intent.NeedsSemantic && intent.SemanticQuery != "" {
		tasks = append(tasks, task{channelSemantic, func(ctx context.Context) ([]channelHit, error) {
			return c.semanticChannel(ctx, intent.SemanticQuery)
		}})
	}

	results := make([]channelResult, len(tasks))
	done := make(chan int, len(tasks))
	for i, tk := range tasks {
		go func() {
			hits, err := tk.run(ctx)
			results[i] = channelResult{name: tk.name, hits: hits, err: err}
			done <- i
		}()
	}
	for range tasks {
		<-done
	}

	// Fold partial results sequentially in channel declaration order.
	type fusedEntry struct {
		record *core.LogRecord
		score  float64
	}
	byID := make(map[string]*fusedEntry)
	var ordered []*fusedEntry

	for _, res := range results {
		if res.err != nil {
			c.logger.Warn("retrieval channel failed", "channel", res.name, "err", res.err)
			c.monitor.ChannelDone(res.name, 0, res.err)
			continue
		}
		c.monitor.ChannelDone(res.name, len(res.hits), nil)

		for _, hit := range res.hits {
			if entry, ok := byID[hit.record.Id]; ok {
				entry.score += hit.score
				continue
			}
			entry := &fusedEntry{record: hit.record, score: hit.score}
			byID[hit.record.Id] = entry
			ordered = append(ordered, entry)
		}
	}

	usedFallback := false
	if len(ordered) == 0 {
		usedFallback = true
		recent, err := c.repo.GetRecentLogs(ctx, fallbackLimit)
		if err != nil {
			c.logger.Error("recency fallback failed", "err", err)
			c.monitor.ChannelDone(channelFallback, 0, err)
			c.monitor.Fused(0, true)
			return nil
		}
		c.monitor.ChannelDone(channelFallback, len(recent), nil)
		for _, record := range recent {
			ordered = append(ordered, &fusedEntry{record: record, score: fallbackScore})
		}
	}

	// Stable sort keeps channel-order insertion as the tie-break.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	if len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}

	retrieved := make([]*core.RetrievedLog, len(ordered))
	for i, entry := range ordered {
		retrieved[i] = &core.RetrievedLog{Record: entry.record, Score: entry.score}
	}
	c.monitor.Fused(len(retrieved), usedFallback)
	return retrieved
}

// dateChannel returns every log inside the intent date range at full
// score. The range end is a calendar date, so matching extends through the
// whole end day.
func (c *Coordinator) dateChannel(ctx context.Context, dr *core.DateRange) ([]channelHit, error) {
	start, err := time.Parse("2006-01-02", dr.Start)
	if err != nil {
		return nil, fmt.Errorf("bad range start %q: %w", dr.Start, err)
	}
	end, err := time.Parse("2006-01-02", dr.End)
	if err != nil {
		return nil, fmt.Errorf("bad range end %q: %w", dr.End, err)
	}

	records, err := c.repo.GetLogsByDateRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	hits := make([]channelHit, len(records))
	for i, record := range records {
		hits[i] = channelHit{record: record, score: dateChannelScore}
	}
	return hits, nil
}

// tagChannel returns logs carrying any of the intent tags. A record scores
// the tag bonus once no matter how many tags it matched.
func (c *Coordinator) tagChannel(ctx context.Context, tags []string) ([]channelHit, error) {
	records, err := c.repo.GetLogsByTags(ctx, tags)
	if err != nil {
		return nil, err
	}

	hits := make([]channelHit, len(records))
	for i, record := range records {
		hits[i] = channelHit{record: record, score: tagChannelScore}
	}
	return hits, nil
}

// semanticChannel embeds the query and scores every stored embedding by
// cosine similarity. Only similarities strictly above the threshold
// contribute, weighted down so an exact date match still outranks them.
func (c *Coordinator) semanticChannel(ctx context.Context, query string) ([]channelHit, error) {
	embedCtx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	queryVec, err := c.embedder.EmbedText(embedCtx, query)
	if err != nil {
		return nil, err
	}

	embedded, err := c.repo.GetAllEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	var hits []channelHit
	for _, emb := range embedded {
		sim := cosineSimilarity(queryVec, emb.Vector)
		if sim <= semanticThreshold {
			continue
		}
		hits = append(hits, channelHit{
			record: &core.LogRecord{
				Id:        emb.Id,
				Content:   emb.Content,
				Timestamp: emb.Timestamp,
				Tags:      emb.Tags,
			},
			score: sim * semanticWeight,
		})
	}
	return hits, nil
}
