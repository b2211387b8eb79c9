// Package watch reports changes to the refs of a repository.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/gitodb/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Watcher calls a function, debounced, whenever HEAD or a ref changes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	closed   bool
}

// New watches the git directory of root, which may be a worktree or the git
// directory itself. onChange runs on its own goroutine after delay has passed
// without further events.
func New(root string, delay time.Duration, onChange func()) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	paths, err := watchPaths(root)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := fw.Add(path); err != nil {
			err := errors.Join(err, fw.Close())
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}
	w := &Watcher{watcher: fw}
	debounce.Ensure(&w.debounce, delay, onChange)
	return w, nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if shouldIgnoreWatchPath(ev.Name) {
		return
	}
	slog.Debug("fsnotify event",
		slog.String("op", ev.Op.String()),
		slog.String("path", ev.Name),
	)
	// fsnotify is not recursive; new ref namespaces need their own watch.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				slog.Error("watch new directory", slog.String("path", ev.Name), slog.Any("error", err))
			}
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.debounce.Trigger()
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.debounce.Stop()
	return w.watcher.Close()
}

// watchPaths returns the git directory and every directory below its refs.
func watchPaths(root string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("repository path not set")
	}
	gitDir := root
	if info, err := os.Stat(filepath.Join(root, ".git")); err == nil && info.IsDir() {
		gitDir = filepath.Join(root, ".git")
	}
	paths := []string{gitDir}
	refs := filepath.Join(gitDir, "refs")
	err := filepath.WalkDir(refs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("walk %s: %w", refs, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	base := filepath.Base(name)
	return base == "index" || base == "FETCH_HEAD" || base == "ORIG_HEAD"
}
