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

// RetrievalMonitor receives notifications as a retrieval pass progresses.
// Implementations must be safe for concurrent use; channel callbacks fire
// from separate goroutines.
type RetrievalMonitor interface {
	// ChannelDone fires once per retrieval channel with its hit count, or
	// the error that made it contribute nothing.
	ChannelDone(channel string, hits int, err error)

	// Fused fires after score fusion with the final result count and
	// whether the recency fallback produced them.
	Fused(results int, fallback bool)
}

type noopMonitor struct{}

func (noopMonitor) ChannelDone(string, int, error) {}
func (noopMonitor) Fused(int, bool)                {}
