package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/chatdocs/internal/core/domain"
	"github.com/custodia-labs/chatdocs/internal/core/ports/driven"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// DefaultDebounce is how long the watcher waits for quiet before reporting.
const DefaultDebounce = 500 * time.Millisecond

// Verify interface compliance.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher reports markdown files that change under a root directory.
type Watcher struct {
	root     string
	glob     string
	debounce time.Duration
}

// NewWatcher creates a watcher for files under root matching glob.
func NewWatcher(root, glob string) *Watcher {
	if glob == "" {
		glob = domain.DefaultDocsGlob
	}
	return &Watcher{root: root, glob: glob, debounce: DefaultDebounce}
}

// SetDebounce changes the quiet period. Non-positive values are ignored.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Watch starts watching and returns a channel of changed source paths.
// Events are coalesced until the debounce period passes without changes.
// The channel is closed when ctx ends.
func (w *Watcher) Watch(ctx context.Context) (<-chan []string, error) {
	if err := checkRoot(w.root); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addRecursive(fsw, w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	out := make(chan []string)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- []string) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if w.watchNewDir(fsw, event.Name, pending) {
					timer.Reset(w.debounce)
				}
				continue
			}
			rel, ok := w.handleFsEvent(event)
			if !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for rel := range pending {
				batch = append(batch, rel)
			}
			sort.Strings(batch)
			clear(pending)

			logger.Debug("watcher: %d changed files", len(batch))
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent maps an fsnotify event to the source path it affects.
// Chmod-only events, hidden paths and files outside the glob are ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if hasHiddenSegment(rel) {
		return "", false
	}
	if ok, _ := doublestar.Match(w.glob, rel); !ok {
		return "", false
	}
	return rel, true
}

// watchNewDir starts watching a directory created after Watch began and
// marks the files already inside it as changed. It reports whether any were.
func (w *Watcher) watchNewDir(fsw *fsnotify.Watcher, dir string, pending map[string]struct{}) bool {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || hasHiddenSegment(filepath.ToSlash(rel)) {
		return false
	}
	if err := w.addRecursive(fsw, dir); err != nil {
		logger.Warn("watch %s: %v", dir, err)
		return false
	}

	found := false
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.handleFsEvent(fsnotify.Event{Name: p, Op: fsnotify.Create}); ok {
			pending[rel] = struct{}{}
			found = true
		}
		return nil
	})
	return found
}

// addRecursive watches dir and every non-hidden directory below it.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
