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


// Package compose turns stretches of the log corpus into derived content:
// structured daily summaries, long-form blog posts, skill-tree analyses
// and short conversation titles. Each operation loads the relevant
// entries from the repository, renders them into a fixed prompt and hands
// the prompt to a generative model; nothing here is persisted.
package compose
