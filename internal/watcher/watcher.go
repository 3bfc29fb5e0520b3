// Package watcher triggers sync passes when files under the configured
// target roots change. Because a sync pass always reconciles the full target
// set, individual events carry no payload; rapid bursts are coalesced into a
// single debounced trigger.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDebounce is the default trigger coalescing window.
const DefaultDebounce = 500 * time.Millisecond

// Options configures the watcher behavior.
type Options struct {
	// Targets are the glob patterns whose base directories are watched.
	Targets []string

	// Workdir anchors relative target patterns.
	Workdir string

	// Debounce is the coalescing window before a trigger fires.
	// Default: DefaultDebounce.
	Debounce time.Duration
}

// Watcher watches the target roots recursively and emits a debounced
// trigger whenever something underneath them changes.
type Watcher struct {
	opts    Options
	fsw     *fsnotify.Watcher
	output  chan struct{}
	timer   *time.Timer
	mu      sync.Mutex
	stopped bool
}

// New creates a watcher for the given options.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		opts:   opts,
		fsw:    fsw,
		output: make(chan struct{}, 1),
	}, nil
}

// Start registers the target roots and begins dispatching triggers.
// It runs until the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots() {
		if err := w.watchTree(root); err != nil {
			slog.Warn("failed to watch target root",
				slog.String("root", root),
				slog.String("error", err.Error()))
		}
	}

	go w.run(ctx)
	return nil
}

// roots derives the set of directories to watch from the target patterns.
func (w *Watcher) roots() []string {
	seen := make(map[string]struct{})
	var roots []string

	for _, pattern := range w.opts.Targets {
		expanded := pattern
		if strings.HasPrefix(expanded, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				expanded = filepath.Join(home, expanded[2:])
			}
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(w.opts.Workdir, expanded)
		}

		base, _ := doublestar.SplitPattern(filepath.ToSlash(expanded))
		root := filepath.FromSlash(base)
		if _, ok := seen[root]; !ok {
			seen[root] = struct{}{}
			roots = append(roots, root)
		}
	}

	return roots
}

// watchTree adds root and every existing subdirectory to the watch list.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories must be added to keep recursive coverage
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watchTree(event.Name)
				}
			}

			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.fire)
}

// fire emits a trigger. The channel holds one pending trigger; if a sync
// pass is already queued, further triggers fold into it.
func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	select {
	case w.output <- struct{}{}:
	default:
	}
}

// Triggers returns the channel of debounced sync triggers.
// The channel is closed when the watcher stops.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.output
}

// Stop stops the watcher and closes the trigger channel.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true

	if w.timer != nil {
		w.timer.Stop()
	}
	err := w.fsw.Close()
	close(w.output)
	return err
}
