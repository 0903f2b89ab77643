package kb

import "strings"

// Chunking defaults. The knowledge base was indexed with these, so
// re-ingesting with different values is safe but mixing is wasteful.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into overlapping windows of at most size characters,
// stepping size-overlap at a time. It prefers to cut on a whitespace
// boundary near the window end so words stay whole. Empty or
// whitespace-only input yields no chunks.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}
		// Back up to the nearest whitespace, but never give up more than
		// a tenth of the window.
		cut := end
		for cut > start+size-size/10 && !isSpace(text[cut-1]) {
			cut--
		}
		if cut == start+size-size/10 || cut <= start+step {
			cut = end
		}
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
