package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
)

// Ensure IndexFactory implements the interface.
var _ driven.VectorIndexFactory = (*IndexFactory)(nil)

// IndexFactory opens the index stored under a persist directory.
type IndexFactory struct {
	persistDir string
}

// NewIndexFactory creates a factory for persistDir.
func NewIndexFactory(persistDir string) *IndexFactory {
	if persistDir == "" {
		persistDir = domain.DefaultPersistDir
	}
	return &IndexFactory{persistDir: persistDir}
}

// Open opens an existing index. Nothing is created on disk when it is missing.
func (f *IndexFactory) Open(_ context.Context) (driven.VectorIndex, error) {
	info, err := os.Stat(f.Location())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", domain.ErrIndexNotFound, f.persistDir)
		}
		return nil, fmt.Errorf("stat index: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrIndexNotFound, f.Location())
	}
	return NewStore(f.persistDir)
}

// Create opens the index, creating the directory and database if absent.
func (f *IndexFactory) Create(_ context.Context) (driven.VectorIndex, error) {
	return NewStore(f.persistDir)
}

// Location returns the database file path.
func (f *IndexFactory) Location() string {
	return filepath.Join(f.persistDir, DBFile)
}
