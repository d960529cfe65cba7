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


// Package agent implements question answering over the log corpus.
//
// A question flows through three stages:
//
//  1. Extractor turns it into a structured retrieval intent (date range,
//     tags, semantic query).
//  2. Coordinator runs the date, tag and semantic retrieval channels
//     concurrently and fuses their scores additively into a ranked list,
//     falling back to recent logs when nothing matches.
//  3. Synthesizer grounds the generative model in the top results and
//     produces the answer, complete or streamed.
//
// Every stage degrades rather than fails: a broken intent model falls back
// to pure semantic search, a broken channel contributes nothing, and only
// answer generation itself surfaces an error (ErrGeneration), still
// accompanied by the retrieval evidence.
package agent
