package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelscan/internal/config"
	"reelscan/internal/logging"
	"reelscan/internal/postercache"
	"reelscan/internal/registry"
	"reelscan/internal/scanner"
	"reelscan/internal/watch"
)

// Daemon coordinates the background services and enforces single-instance
// execution: the startup sweep, the periodic sweep ticker, the filesystem
// watcher, and the HTTP API.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *registry.Store
	registry *registry.Registry
	scanner  *scanner.Scanner
	watcher  *watch.Watcher
	posters  *postercache.Cache
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	FileCount      int
	MediaDir       string
	RegistryDBPath string
	LockFilePath   string
}

// New constructs a daemon. store, watcher, and posters may be nil; the
// daemon then runs without persistence, filesystem events, or poster
// housekeeping respectively.
func New(cfg *config.Config, store *registry.Store, reg *registry.Registry, sc *scanner.Scanner, watcher *watch.Watcher, posters *postercache.Cache, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || reg == nil || sc == nil {
		return nil, errors.New("daemon requires config, registry, and scanner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "reelscand.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		registry: reg,
		scanner:  sc,
		watcher:  watcher,
		posters:  posters,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	if posters != nil {
		reg.SetDeleteHook(func(record registry.Record) {
			posters.Delete(record.PosterURL)
		})
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, loads the persisted registry, and launches
// the background services. It returns once everything is running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelscan daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.store != nil {
		records, err := d.store.Load(runCtx)
		if err != nil {
			d.releaseLock()
			cancel()
			d.cancel = nil
			return fmt.Errorf("load registry: %w", err)
		}
		d.registry.Load(records)
		d.logger.Info("registry loaded", logging.Int("records", len(records)))
	}

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.releaseLock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.wg.Add(1)
	go d.sweepLoop(runCtx)

	if d.watcher != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("watcher stopped", logging.Error(err))
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("reelscan daemon started",
		logging.String("media_dir", d.cfg.Paths.MediaDir),
		logging.String("lock", d.lockPath))
	return nil
}

// sweepLoop reconciles the registry with the filesystem at startup and then
// sweeps on the configured interval.
func (d *Daemon) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	if removed := d.scanner.Cleanup(ctx); removed > 0 {
		d.logger.Info("startup cleanup", logging.Int("removed", removed))
	}
	if _, err := d.scanner.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Error("startup sweep", logging.Error(err))
	}

	interval := time.Duration(d.cfg.Scan.SweepInterval) * time.Second
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.scanner.Cleanup(ctx)
			if _, err := d.scanner.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("periodic sweep", logging.Error(err))
			}
		}
	}
}

// Stop halts the background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.api != nil {
		d.api.stop()
	}
	d.releaseLock()
	d.running.Store(false)
	d.logger.Info("reelscan daemon stopped")
}

// Close stops the daemon and releases the registry store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports current runtime information.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		FileCount:    d.registry.Len(),
		MediaDir:     d.cfg.Paths.MediaDir,
		LockFilePath: d.lockPath,
	}
	if d.store != nil {
		status.RegistryDBPath = d.store.Path()
	}
	return status
}

// APIAddr returns the bound API address, or "" when the API is disabled or
// not yet started.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}
