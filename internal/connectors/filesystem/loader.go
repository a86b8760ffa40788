// Package filesystem reads the markdown documentation corpus from a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/logger"
	"github.com/custodia-labs/chatdocs/internal/normalisers/markdown"
)

// CloneHint tells the user how to obtain the corpus.
const CloneHint = "clone https://github.com/LoopKit/loopdocs.git or run `chatdocs fetch`"

// Verify interface compliance.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads every file under a root directory matching a glob.
type Loader struct {
	root       string
	glob       string
	normaliser driven.Normaliser
}

// NewLoader creates a loader for root. An empty glob selects every markdown file.
func NewLoader(root, glob string) *Loader {
	if glob == "" {
		glob = domain.DefaultDocsGlob
	}
	return &Loader{
		root:       root,
		glob:       glob,
		normaliser: markdown.New(),
	}
}

// Root returns the corpus directory.
func (l *Loader) Root() string {
	return l.root
}

// Glob returns the file selection pattern.
func (l *Loader) Glob() string {
	return l.glob
}

// Load returns one document per matching file in lexical path order.
// Hidden files and files inside hidden directories are skipped.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	if err := checkRoot(l.root); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(l.glob) {
		return nil, fmt.Errorf("%w: bad glob pattern %q", domain.ErrInvalidInput, l.glob)
	}

	fsys := os.DirFS(l.root)
	matches, err := doublestar.Glob(fsys, l.glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", l.glob, err)
	}
	sort.Strings(matches)

	logger.Debug("loader: %d files match %s under %s", len(matches), l.glob, l.root)

	docs := make([]domain.Document, 0, len(matches))
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hasHiddenSegment(rel) {
			continue
		}

		raw, err := readRawFile(fsys, l.root, rel)
		if err != nil {
			return nil, err
		}
		doc, err := l.normaliser.Normalise(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("normalise %s: %w", rel, err)
		}
		docs = append(docs, *doc)
	}

	return docs, nil
}

func readRawFile(fsys fs.FS, root, rel string) (*driven.RawFile, error) {
	info, err := fs.Stat(fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	content, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}

	uri := filepath.Join(root, filepath.FromSlash(rel))
	if abs, err := filepath.Abs(uri); err == nil {
		uri = abs
	}

	return &driven.RawFile{
		SourceID:   rel,
		URI:        uri,
		Content:    content,
		ModifiedAt: info.ModTime(),
	}, nil
}

// checkRoot returns ErrDocsNotFound unless root is an existing directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist (%s)", domain.ErrDocsNotFound, root, CloneHint)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrDocsNotFound, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory (%s)", domain.ErrDocsNotFound, root, CloneHint)
	}
	return nil
}

// isHidden returns true for dot-prefixed names other than "." and "..".
func isHidden(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	if base == "." || base == ".." {
		return false
	}
	return strings.HasPrefix(base, ".")
}

// hasHiddenSegment reports whether any element of a slash-separated path is hidden.
func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if isHidden(seg) {
			return true
		}
	}
	return false
}
