// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// namespace scopes the name-based chunk IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/chatdocs/chunk"))

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It fails unless 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := (domain.ChunkingSettings{Size: p.chunkSize, Overlap: p.overlap}).Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Split(doc, p.chunkSize, p.overlap)
}

// Split cuts doc into windows of size characters, each starting
// size-overlap characters after the previous one. The final window may be
// shorter. No window is emitted once the previous one reached the end, so
// dropping the first overlap characters of every chunk but the first and
// concatenating yields the original content.
//
// Characters are Unicode code points, so multi-byte text is never split
// inside a rune. Content that is not valid UTF-8 is rejected with
// domain.ErrInvalidInput since it cannot be reconstructed from runes.
func Split(doc *domain.Document, size, overlap int) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if err := (domain.ChunkingSettings{Size: size, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}

	if !utf8.ValidString(doc.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, doc.SourceID)
	}

	runes := []rune(doc.Content)
	if len(runes) == 0 {
		// Empty content produces no chunks
		return nil, nil
	}

	step := size - overlap
	chunks := make([]domain.Chunk, 0, len(runes)/step+1)

	for start, position := 0, 0; ; start, position = start+step, position+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		content := string(runes[start:end])
		chunks = append(chunks, domain.Chunk{
			ID:         ID(doc.SourceID, position, content),
			DocumentID: doc.ID,
			SourceID:   doc.SourceID,
			Content:    content,
			Position:   position,
			Offset:     start,
			Metadata: map[string]any{
				domain.MetadataSource: doc.SourceID,
				"title":               doc.Title,
				"position":            position,
			},
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// ID returns the name-based identifier of a chunk.
// Equal source, position and text always give the same ID.
func ID(source string, position int, content string) string {
	name := source + "\x00" + strconv.Itoa(position) + "\x00" + content
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
