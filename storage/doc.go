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


// Package storage provides the storage abstraction layer for brainlog.
//
// The package defines the LogRepository interface that decouples the
// retrieval agent and ingestion pipeline from the storage implementation,
// along with MUS serialization helpers shared by backends.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.LogRepository interface to enforce
// abstraction and allow alternative backends:
//
//	repo, err := badger.NewLogRepository(backend)
//
// # Architecture
//
// The retrieval agent only reads (by date range, by tags, the embedding
// corpus, recent records); the ingestion pipeline writes records and
// embeddings. Both sides share one repository interface because the
// underlying store is a single BadgerDB instance.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
