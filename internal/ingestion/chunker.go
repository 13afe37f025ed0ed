package ingestion

import (
	"strings"

	"docrag/internal/model"
)

const (
	DefaultChunkSize    = 600
	DefaultChunkOverlap = 120

	// minSplitOffset keeps a chunk from being cut at a space too close to its start.
	minSplitOffset = 50
)

// Chunker splits document text into overlapping character windows that end
// on a word boundary when one is available.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets how many characters consecutive windows share.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// NewChunker creates a Chunker with the given options.
func NewChunker(opts ...Option) *Chunker {
	c := &Chunker{chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// Chunk splits doc.Text after collapsing whitespace. Offsets are in runes of
// the normalized text. The window that reaches the end of the text is the last
// one. IDs and embeddings are left for the caller.
func (c *Chunker) Chunk(doc model.Document) []model.Chunk {
	normalized := []rune(strings.Join(strings.Fields(doc.Text), " "))
	n := len(normalized)

	var out []model.Chunk
	for start, index := 0, 0; start < n; {
		end := min(start+c.chunkSize, n)
		if end < n {
			if split := lastSpace(normalized, start, end); split > start+minSplitOffset {
				end = split
			}
		}

		if content := strings.TrimSpace(string(normalized[start:end])); content != "" {
			out = append(out, model.Chunk{
				DocumentID:  doc.ID,
				WorkspaceID: doc.WorkspaceID,
				ChunkIndex:  index,
				StartChar:   start,
				EndChar:     end,
				Content:     content,
				SourceTitle: doc.Title,
				SourceURL:   doc.SourceURL,
			})
			index++
		}

		if end == n {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func lastSpace(rs []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}
