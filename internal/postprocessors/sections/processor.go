// Package sections annotates chunks with the markdown heading they fall under.
package sections

import (
	"context"
	"regexp"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// MetadataSection is the chunk metadata key holding the heading text.
const MetadataSection = "section"

var headingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t#]*$`)

// heading is a markdown heading and its rune offset in the document.
type heading struct {
	offset int
	text   string
}

// Processor sets MetadataSection on each chunk to the closest heading at or
// before the chunk's offset. Chunk content is never changed.
type Processor struct{}

// New creates a section annotator.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sections"
}

// Process annotates chunks in place and returns them.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	headings := findHeadings(doc.Content)
	if len(headings) == 0 {
		return chunks, nil
	}

	h := -1
	for i := range chunks {
		for h+1 < len(headings) && headings[h+1].offset <= chunks[i].Offset {
			h++
		}
		if h < 0 {
			continue
		}
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[MetadataSection] = headings[h].text
	}
	return chunks, nil
}

// findHeadings returns ATX headings with rune offsets, in document order.
func findHeadings(content string) []heading {
	matches := headingRe.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]heading, 0, len(matches))
	runeOffset, byteOffset := 0, 0
	for _, m := range matches {
		// Convert byte offsets to rune offsets incrementally.
		runeOffset += len([]rune(content[byteOffset:m[0]]))
		byteOffset = m[0]
		out = append(out, heading{offset: runeOffset, text: content[m[2]:m[3]]})
	}
	return out
}
