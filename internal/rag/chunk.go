// ABOUTME: Fixed-size character chunking with overlap for document ingestion
// ABOUTME: Counts runes, so multi-byte text is never split inside a character

package rag

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
)

// Chunk splits text into windows of size runes, each starting overlap runes
// before the previous one ended. The final window ends at the end of text.
// An overlap at or above size is treated as zero.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []string
	for i := 0; i < n; {
		j := min(i+size, n)
		chunks = append(chunks, string(runes[i:j]))
		if j == n {
			break
		}
		i = j - overlap
	}
	return chunks
}
