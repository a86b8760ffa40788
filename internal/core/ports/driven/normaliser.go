package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// RawFile is a corpus file as read from disk, before normalisation.
type RawFile struct {
	// SourceID is the slash-separated path relative to the corpus root.
	SourceID string

	// URI is the absolute file path.
	URI string

	// Content is the file bytes.
	Content []byte

	// ModifiedAt is the file modification time.
	ModifiedAt time.Time
}

// Normaliser turns a raw file into a Document.
type Normaliser interface {
	// Normalise builds a document from a raw file.
	Normalise(ctx context.Context, raw *RawFile) (*domain.Document, error)
}
