// Package daemon hosts the long-running process: single-instance locking,
// ownership of the history store and workflow manager, and the optional
// HTTP status and metrics listener.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"amberpipe/internal/config"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
	"amberpipe/internal/workflow"
)

// Status summarizes the daemon process and its workflow.
type Status struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	LockPath      string          `json:"lock_path"`
	HistoryDBPath string          `json:"history_db_path"`
	SocketPath    string          `json:"socket_path"`
	Workflow      workflow.Status `json:"workflow"`
}

// Daemon owns the store, the manager, and the instance lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *history.Store
	manager *workflow.Manager
	lock    *flock.Flock
	metrics *Metrics
	api     *apiServer

	mu      sync.Mutex
	started bool
}

// New acquires the instance lock and wires the daemon. A second daemon on
// the same lock path fails fast instead of fighting over the watch
// directory.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "daemon")

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "amberpiped.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another instance holds %s", lockPath)
	}

	store, err := history.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	manager := workflow.NewManager(cfg, store, logger)
	metrics := NewMetrics(manager)
	manager.SetObserver(metrics)

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		manager: manager,
		lock:    lock,
		metrics: metrics,
	}

	if cfg.Paths.APIBind != "" {
		api, apiErr := newAPIServer(cfg.Paths.APIBind, d, metrics, logger)
		if apiErr != nil {
			d.Close()
			return nil, apiErr
		}
		d.api = api
	}
	return d, nil
}

// Start begins directory monitoring. Idempotent.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}
	if err := d.manager.StartMonitoring(ctx); err != nil {
		return err
	}
	d.started = true
	return nil
}

// Stop halts monitoring, waiting for in-flight runs per the configured stop
// timeout. Idempotent.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.mu.Unlock()
	d.manager.StopMonitoring()
}

// Status reports process and workflow state.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	wf, err := d.manager.Status(ctx)
	if err != nil {
		return Status{}, err
	}
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	return Status{
		Running:       started,
		PID:           os.Getpid(),
		LockPath:      d.lock.Path(),
		HistoryDBPath: d.store.Path(),
		SocketPath:    d.cfg.Paths.SocketPath,
		Workflow:      wf,
	}, nil
}

// Manager exposes the workflow manager for the control surface.
func (d *Daemon) Manager() *workflow.Manager {
	return d.manager
}

// LogPath returns the daemon log file location.
func (d *Daemon) LogPath() string {
	return filepath.Join(d.cfg.Paths.LogDir, "amberpipe.log")
}

// APIAddr returns the bound HTTP address, or empty when disabled.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.Addr()
}

// Close releases every daemon resource. Safe to call after a partial New.
func (d *Daemon) Close() {
	d.Stop()
	if d.api != nil {
		d.api.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release instance lock", logging.Error(err))
		}
	}
}
