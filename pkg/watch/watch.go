// Package watch reconverts runbooks when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tehprofessor/corg/internal/logging"
	"github.com/tehprofessor/corg/pkg/fsutil"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports runbooks that were written or created.
type Watcher struct {
	// Extensions are the runbook extensions, with leading dot.
	Extensions []string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Skip reports paths to ignore. Optional.
	Skip func(path string) bool

	// ready is called once every watch is registered.
	ready func()
}

// New returns a Watcher for the given extensions.
func New(extensions []string) *Watcher {
	return &Watcher{Extensions: extensions, Debounce: DefaultDebounce}
}

// Run watches paths until ctx is cancelled, calling onChange for each
// runbook whose content changed. Directories are watched recursively,
// hidden ones excepted, and directories created later are picked up.
// onChange runs on the watching goroutine, one call at a time.
func (w *Watcher) Run(ctx context.Context, paths []string, onChange func(ctx context.Context, path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	logger := logging.FromContext(ctx)

	// Files named directly are watched through their parent directory, so
	// siblings are reported only when they fall under a watched tree.
	files := make(map[string]bool)
	var trees []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files[abs] = true
			if err := fsw.Add(filepath.Dir(abs)); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			continue
		}
		if err := addTree(fsw, abs); err != nil {
			return err
		}
		trees = append(trees, abs)
	}

	if w.ready != nil {
		w.ready()
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fire := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	seen := make(map[string]*fsutil.FileInfo)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) && !hidden(ev.Name) {
				if err := addTree(fsw, ev.Name); err != nil {
					logger.Warn("watch new directory", logging.FieldPath, ev.Name, logging.FieldError, err)
				}
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.wants(ev.Name, files, trees) {
				continue
			}
			path := ev.Name
			if t, ok := timers[path]; ok {
				t.Reset(debounce)
				continue
			}
			timers[path] = time.AfterFunc(debounce, func() {
				select {
				case fire <- path:
				case <-ctx.Done():
				}
			})

		case path := <-fire:
			delete(timers, path)
			if !changed(ctx, seen, path) {
				continue
			}
			logger.Debug("runbook changed", logging.FieldPath, path)
			onChange(ctx, path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)
		}
	}
}

func (w *Watcher) wants(path string, files map[string]bool, trees []string) bool {
	if !files[path] && !within(path, trees) {
		return false
	}
	if hidden(path) || !hasExtension(path, w.Extensions) {
		return false
	}
	return w.Skip == nil || !w.Skip(path)
}

func within(path string, roots []string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// changed reports whether path differs from the last reported content and
// records its current state.
func changed(ctx context.Context, seen map[string]*fsutil.FileInfo, path string) bool {
	if info, ok := seen[path]; ok {
		modified, err := fsutil.CheckModified(ctx, info)
		if err == nil && !modified {
			return false
		}
	}
	_, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		// Removed or replaced before the debounce fired.
		delete(seen, path)
		return !errors.Is(err, fsutil.ErrNotFound)
	}
	seen[path] = info
	return true
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
