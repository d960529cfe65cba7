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


package ai

import (
	"context"
	"iter"
	"log/slog"
)

// PumpStream adapts a callback-style streaming model call into the
// iter.Seq2 fragment sequence Generator.GenerateStream promises. run
// performs the call, pushing each fragment through emit; emit blocks until
// the consumer takes the fragment and returns the context error once the
// consumer is gone, so run must propagate it. A failure from run is
// yielded as the final non-nil error. Breaking out of the iteration
// cancels the context passed to run.
func PumpStream(ctx context.Context, logger *slog.Logger, run func(ctx context.Context, emit func(chunk string) error) error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		type item struct {
			chunk string
			err   error
		}
		items := make(chan item)

		emit := func(chunk string) error {
			select {
			case items <- item{chunk: chunk}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		go func() {
			defer close(items)
			if err := run(ctx, emit); err != nil && ctx.Err() == nil {
				select {
				case items <- item{err: err}:
				case <-ctx.Done():
				}
			}
		}()

		for it := range items {
			if it.err != nil {
				if logger != nil {
					logger.Error("streaming generation failed", "err", it.err)
				}
				yield("", it.err)
				return
			}
			if !yield(it.chunk, nil) {
				return
			}
		}
	}
}
