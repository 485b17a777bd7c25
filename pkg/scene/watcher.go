package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long a Watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives each successfully reloaded document.
type ReloadFunc func(ctx context.Context, doc *Document) error

// Watcher re-reads one scene file whenever it changes.
type Watcher struct {
	path     string
	logger   zerolog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	closed  bool
	// reloads counts armed debounce timers and reloads in flight.
	reloads sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for the scene file at path.
func NewWatcher(path string, logger zerolog.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		logger:   logger.With().Str("component", "scene-watcher").Str("scene", path).Logger(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns immediately. The parent directory is
// watched so that editors replacing the file by rename are noticed. A
// reload that fails to load or validate is logged and reload is not
// called. Watching stops when ctx is done or Close is called.
func (w *Watcher) Watch(ctx context.Context, reload ReloadFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	go w.processEvents(ctx, fw, reload)

	w.logger.Info().Msg("Started watching scene")
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, fw *fsnotify.Watcher, reload ReloadFunc) {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			_ = fw.Close()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("Scene file changed")
			w.schedule(ctx, reload)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, reload ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.stopTimerLocked()
	w.reloads.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.reloads.Done()
		if err := w.triggerReload(ctx, reload); err != nil {
			w.logger.Error().Err(err).Msg("Failed to reload scene")
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
}

// stopTimerLocked cancels a pending reload. A timer that already fired
// releases its own count.
func (w *Watcher) stopTimerLocked() {
	if w.timer != nil && w.timer.Stop() {
		w.reloads.Done()
	}
	w.timer = nil
}

func (w *Watcher) triggerReload(ctx context.Context, reload ReloadFunc) error {
	if ctx.Err() != nil {
		return nil
	}
	doc, err := Load(w.path)
	if err != nil {
		return err
	}
	if err := reload(ctx, doc); err != nil {
		return fmt.Errorf("failed to apply reloaded scene: %w", err)
	}
	w.logger.Info().Int("layers", len(doc.Layers)).Msg("Scene reloaded")
	return nil
}

// Close stops watching, cancels a pending reload and waits for a reload
// already running. reload is not called after Close returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.stopTimerLocked()
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	var err error
	if fw != nil {
		err = fw.Close()
	}
	w.reloads.Wait()
	return err
}
