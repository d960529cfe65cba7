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


package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/brainlog/ai"
	"github.com/poiesic/brainlog/core"
	"github.com/poiesic/brainlog/storage"
)

const defaultComposeTimeout = 120 * time.Second

const dateLayout = "2006-01-02"

// Composer generates derived content from the log corpus.
type Composer struct {
	repo      storage.LogRepository
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithTimeout bounds a single content generation call.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewComposer creates a Composer over the repository and generator.
func NewComposer(repo storage.LogRepository, generator ai.Generator, opts ...Option) *Composer {
	c := &Composer{
		repo:      repo,
		generator: generator,
		timeout:   defaultComposeTimeout,
		logger:    slog.Default().With("component", "compose"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// logsInPeriod loads the entries for an inclusive calendar date range,
// oldest first. The repository returns newest first; prompts read better
// in the order the work happened.
func (c *Composer) logsInPeriod(ctx context.Context, startDate, endDate string) ([]*core.LogRecord, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, endDate)
	}

	logs, err := c.repo.GetLogsByDateRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// stringsOf extracts the string elements of a JSON array value, tolerating
// a missing or mistyped field.
func stringsOf(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func tagNames(tags []core.Tag) string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return strings.Join(names, ", ")
}
