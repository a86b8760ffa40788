package domain

import "time"

// MetadataSource is the chunk metadata key holding the source identifier.
const MetadataSource = "source"

// Document is one markdown file loaded for ingestion.
// It is immutable and discarded once chunked.
type Document struct {
	// ID is a stable identifier derived from the source path.
	ID string

	// SourceID is the slash-separated path relative to the docs root.
	// It is the identifier cited in answers.
	SourceID string

	// URI is the absolute location of the file on disk.
	URI string

	// Title is the first H1 heading, or the file name without extension.
	Title string

	// Content is the raw file text. It is never rewritten so that chunks
	// remain exact substrings.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// ModifiedAt is the file modification time.
	ModifiedAt time.Time
}

// Chunk is a contiguous window of a Document.
// Documents are split into chunks for granular retrieval.
type Chunk struct {
	// ID is a name-based identifier derived from source, position and text,
	// so the same document always produces the same chunk IDs.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// SourceID is inherited from the parent Document.
	SourceID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Offset is the character (rune) offset of the chunk within the document.
	Offset int

	// Embedding is the vector representation used for retrieval.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Source returns the chunk's source identifier, falling back to metadata.
func (c Chunk) Source() string {
	if c.SourceID != "" {
		return c.SourceID
	}
	if s, ok := c.Metadata[MetadataSource].(string); ok {
		return s
	}
	return ""
}

// Preview returns the first n characters of the content with newlines flattened.
func (c Chunk) Preview(n int) string {
	runes := []rune(c.Content)
	if n >= 0 && len(runes) > n {
		runes = runes[:n]
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out[i] = r
	}
	return string(out)
}
