package driven

import (
	"context"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
)

// DocumentLoader reads the documentation corpus.
type DocumentLoader interface {
	// Load returns one Document per matching file, ordered by source path.
	// Returns domain.ErrDocsNotFound if the corpus root is missing.
	Load(ctx context.Context) ([]domain.Document, error)

	// Root returns the corpus directory.
	Root() string
}

// ChangeWatcher reports corpus changes.
type ChangeWatcher interface {
	// Watch emits the source paths of changed files, debounced, until ctx ends.
	Watch(ctx context.Context) (<-chan []string, error)
}
