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


package openai

import "strings"

// Embedding models have a hard input window. We size chunks in characters,
// assuming roughly 3 characters per token for mixed prose and code.
const (
	maxChunkChars     = 8192 * 3
	chunkOverlapChars = 128 * 3
)

// chunkText splits text into pieces that fit the embedding model input
// window. Paragraph boundaries are preferred, then sentence boundaries,
// then a hard rune split as last resort. Consecutive chunks share a small
// overlap so context is not lost at the cut points.
func chunkText(text string) []string {
	return splitChunks(text, maxChunkChars, chunkOverlapChars)
}

func splitChunks(text string, maxChars, overlap int) []string {
	if len([]rune(text)) <= maxChars {
		return []string{text}
	}

	var chunks []string
	current := ""

	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}
	grow := func(sep, piece string) {
		if current == "" {
			current = piece
		} else {
			current += sep + piece
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		if runeLen(current)+runeLen(para)+2 <= maxChars {
			grow("\n\n", para)
			continue
		}
		flush()

		if runeLen(para) <= maxChars {
			current = para
			continue
		}

		for _, sentence := range splitSentences(para) {
			if runeLen(current)+runeLen(sentence)+1 <= maxChars {
				grow(" ", sentence)
				continue
			}
			flush()

			if runeLen(sentence) > maxChars {
				chunks = append(chunks, hardSplit(sentence, maxChars, overlap)...)
			} else {
				current = sentence
			}
		}
	}
	flush()

	return withOverlap(chunks, overlap)
}

// withOverlap prepends the tail of each chunk's predecessor so boundary
// context survives the split.
func withOverlap(chunks []string, overlap int) []string {
	if len(chunks) < 2 || overlap <= 0 {
		return chunks
	}
	out := make([]string, 0, len(chunks))
	out = append(out, chunks[0])
	for i := 1; i < len(chunks); i++ {
		out = append(out, runeTail(chunks[i-1], overlap)+" "+chunks[i])
	}
	return out
}

func splitSentences(para string) []string {
	marked := strings.ReplaceAll(para, ". ", ".\x00")
	marked = strings.ReplaceAll(marked, "! ", "!\x00")
	marked = strings.ReplaceAll(marked, "? ", "?\x00")
	return strings.Split(marked, "\x00")
}

// hardSplit cuts s into maxChars windows advancing by maxChars-overlap
// runes per step. Used only for pathological inputs with no usable
// paragraph or sentence boundaries.
func hardSplit(s string, maxChars, overlap int) []string {
	runes := []rune(s)
	step := maxChars - overlap
	if step <= 0 {
		step = maxChars
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+maxChars, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

func runeTail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// meanPool averages chunk vectors component-wise into a single embedding
// for the whole document.
func meanPool(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) == 1 {
		return vectors[0]
	}

	sums := make([]float64, len(vectors[0]))
	for _, vec := range vectors {
		for i, v := range vec {
			sums[i] += float64(v)
		}
	}

	pooled := make([]float32, len(sums))
	n := float64(len(vectors))
	for i, s := range sums {
		pooled[i] = float32(s / n)
	}
	return pooled
}
