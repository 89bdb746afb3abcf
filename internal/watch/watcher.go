package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reelscan/internal/config"
	"reelscan/internal/logging"
	"reelscan/internal/registry"
	"reelscan/internal/scanner"
)

// Characterizer runs the scan pipeline for one file.
type Characterizer interface {
	Characterize(ctx context.Context, path string) scanner.Result
}

// Watcher reacts to filesystem events under the media directory. New video
// files are characterized after a settle delay so partially copied files are
// not probed; deleted files drop out of the registry immediately.
type Watcher struct {
	cfg      *config.Config
	scanner  Characterizer
	registry *registry.Registry
	logger   *slog.Logger
	settle   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option customizes watcher construction.
type Option func(*Watcher)

// WithSettleDelay overrides the configured settle delay.
func WithSettleDelay(delay time.Duration) Option {
	return func(w *Watcher) {
		w.settle = delay
	}
}

// New constructs a watcher over the configured media directory.
func New(cfg *config.Config, sc Characterizer, reg *registry.Registry, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Watcher{
		cfg:      cfg,
		scanner:  sc,
		registry: reg,
		logger:   logging.WithComponent(logger, "watch"),
		settle:   time.Duration(cfg.Scan.SettleDelay) * time.Second,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the media directory tree until the context is cancelled.
// Subdirectories created while running are added to the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.cfg.Paths.MediaDir); err != nil {
		return err
	}
	w.logger.Info("watching media directory",
		logging.String("dir", w.cfg.Paths.MediaDir))

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(fsw, path); err != nil {
				w.logger.Error("watch new directory",
					logging.String("dir", path), logging.Error(err))
			}
			return
		}
		if w.cfg.RecognizedExtension(path) {
			w.schedule(ctx, path)
		}

	case event.Has(fsnotify.Write):
		// Still being written; push the settle deadline out.
		if w.cfg.RecognizedExtension(path) {
			w.schedule(ctx, path)
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(path)
		if w.cfg.RecognizedExtension(path) && w.registry.Remove(ctx, path) {
			w.logger.Info("removed record for deleted file",
				logging.String("path", path))
		}
	}
}

// schedule arms (or re-arms) the settle timer for a path. The scan runs only
// after the file has been quiet for the full settle delay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if result := w.scanner.Characterize(ctx, path); result.Success {
			w.logger.Info("characterized new file",
				logging.String("path", path),
				logging.String("result", result.Message))
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// addTree registers a directory and every subdirectory beneath it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
