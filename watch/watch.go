package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/recline/log"
)

// DefaultDelay is how long a watcher waits for further changes before it
// signals.
const DefaultDelay = 100 * time.Millisecond

// Watcher signals when any file in a replaceable set changes.
//
// The parent directory of each file is watched, so files replaced by
// rename (as many editors save) are still noticed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]struct{}
	dirs      map[string]struct{}
	events    chan struct{}
	stop      chan struct{}
	done      chan struct{}
	debounce  *time.Timer
	logger    log.Logger
	delay     time.Duration
	mu        sync.Mutex
	stopOnce  sync.Once
	closed    bool
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithLogger sets the logger used to report watch events and errors.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New starts a watcher with an empty file set.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		files:     make(map[string]struct{}),
		dirs:      make(map[string]struct{}),
		events:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		delay:     DefaultDelay,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	go w.run()

	return w, nil
}

// Set replaces the watched files. Relative paths are ignored.
// If a directory cannot be watched, the previous set stays in effect.
func (w *Watcher) Set(paths ...string) error {
	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			continue
		}

		p = filepath.Clean(p)
		files[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	added := make([]string, 0, len(dirs))

	for dir := range dirs {
		if _, have := w.dirs[dir]; have {
			continue
		}

		if err := w.fsWatcher.Add(dir); err != nil {
			for _, d := range added {
				_ = w.fsWatcher.Remove(d)
			}

			return err
		}

		added = append(added, dir)
	}

	for dir := range w.dirs {
		if _, keep := dirs[dir]; !keep {
			_ = w.fsWatcher.Remove(dir)
		}
	}

	w.files, w.dirs = files, dirs

	return nil
}

// Files returns the number of watched files.
func (w *Watcher) Files() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.files)
}

func (w *Watcher) match(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.files[filepath.Clean(name)]

	return ok
}

// run processes file system events.
func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.events)
		close(w.done)
	}()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op == fsnotify.Chmod || !w.match(event.Name) {
				continue
			}

			w.logger.Trace("watched file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(w.delay, w.signal)
			w.mu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

			w.logger.Warn("watch error", log.Err(err))
		}
	}
}

func (w *Watcher) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	select {
	case w.events <- struct{}{}:
	default: // already pending
	}
}

// Events returns a channel that receives after a watched file changes.
// It is closed when the watcher stops.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error

	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsWatcher.Close()
		<-w.done
	})

	return err
}

// Loop calls run, watches the files it returns, and calls it again after
// each change until ctx is done or the watcher is closed. An error from run
// ends the loop.
func Loop(
	ctx context.Context,
	w *Watcher,
	run func(context.Context) ([]string, error),
) error {
	for {
		paths, err := run(ctx)
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return nil
		}

		if err := w.Set(paths...); err != nil {
			return err
		}

		w.logger.DebugContext(ctx, "watching", slog.Int("files", w.Files()))

		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-w.Events():
			if !ok {
				return nil
			}
		}
	}
}
