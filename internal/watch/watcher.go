// Package watch triggers rebuilds when project sources change.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/cargodeck/internal/logging"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Patterns []string      // Files that trigger a change; DefaultPatterns if empty
	Ignore   []string      // Paths never watched or reported; DefaultIgnore if nil
	Debounce time.Duration // Quiet period before reporting; DefaultDebounce if zero
	Logger   *logging.Logger
}

// Watcher watches a project tree and reports batches of changed files.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	matcher  *matcher
	debounce time.Duration
	logger   *logging.Logger
	onChange func(paths []string)

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a Watcher for root. onChange receives the sorted,
// slash-separated paths (relative to root) that changed during one quiet
// period. It is called from the watcher's goroutine.
func New(root string, opts Options, onChange func(paths []string)) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	ignore := opts.Ignore
	if ignore == nil {
		ignore = DefaultIgnore
	}
	m, err := newMatcher(patterns, ignore)
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     abs,
		watcher:  fw,
		matcher:  m,
		debounce: debounce,
		logger:   logger.With("root", abs),
		onChange: onChange,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the project tree and begins watching.
func (w *Watcher) Start() error {
	if err := w.watchDirRecursive(w.root); err != nil {
		return err
	}
	go w.watchLoop()
	return nil
}

// Stop stops watching and waits for the event loop to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
	select {
	case <-w.done:
	case <-time.After(time.Second):
	}
}

// watchDirRecursive adds dir and its subdirectories, skipping ignored ones.
// fsnotify only watches single directories.
func (w *Watcher) watchDirRecursive(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if !info.IsDir() || path == dir {
			return nil
		}
		if rel, ok := relative(w.root, path); ok && w.matcher.ignored(rel, true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err.Error())
		}
		return nil
	})
}

// watchLoop processes filesystem events until Stop.
func (w *Watcher) watchLoop() {
	defer close(w.done)

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleEvent(ev, pending) {
				debounceTimer.Reset(w.debounce)
			}

		case <-debounceTimer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			w.logger.Debug("change detected", "files", len(paths))
			if w.onChange != nil {
				w.onChange(paths)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

// handleEvent records a relevant change in pending and reports whether it
// did. New directories are watched as they appear.
func (w *Watcher) handleEvent(ev fsnotify.Event, pending map[string]struct{}) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, ok := relative(w.root, ev.Name)
	if !ok {
		return false
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.matcher.ignored(rel, true) {
				if err := w.watchDirRecursive(ev.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err.Error())
				}
			}
			return false
		}
	}

	if !w.matcher.wanted(rel) {
		return false
	}
	pending[rel] = struct{}{}
	return true
}
