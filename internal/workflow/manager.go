// Package workflow coordinates discovery, admission, and processing. The
// manager owns the watcher, the admission gate, the naming resolver, and the
// pipeline runner, and records every run in the history store.
package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"amberpipe/internal/codegen"
	"amberpipe/internal/config"
	"amberpipe/internal/gate"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
	"amberpipe/internal/naming"
	"amberpipe/internal/pipeline"
	"amberpipe/internal/segment"
	"amberpipe/internal/watch"
)

// Observer receives run lifecycle notifications. All methods are called
// after the run's terminal state is persisted.
type Observer interface {
	RunCompleted(run *history.Run)
	RunFailed(run *history.Run)
}

// Manager drives the whole pipeline for one watch directory.
type Manager struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *history.Store
	gate      *gate.Gate
	resolver  *naming.Resolver
	runner    *pipeline.Runner
	generator *codegen.Generator

	mu       sync.Mutex
	active   map[string]*history.Run
	watcher  *watch.Watcher
	running  bool
	observer Observer

	// headerMu serializes AssetIDs.h regeneration across per-asset
	// goroutines.
	headerMu sync.Mutex

	wg sync.WaitGroup
}

// NewManager wires a manager from its configuration. The segmenter is built
// once here; a disabled configuration yields pass-through behavior on
// segment steps.
func NewManager(cfg *config.Config, store *history.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	segmenter := segment.NewHTTP(cfg.Segmenter)
	registry := pipeline.NewRegistry(cfg, segmenter)

	return &Manager{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "workflow"),
		store:     store,
		gate:      gate.New(cfg.Processing.MaxParallel),
		resolver:  naming.NewResolver(nil),
		runner:    pipeline.NewRunner(cfg, registry, logger),
		generator: codegen.NewGenerator(cfg.Paths.HeaderDir, cfg.Paths.CompiledDir),
		active:    make(map[string]*history.Run),
	}
}

// SetObserver installs the lifecycle observer. Call before StartMonitoring.
func (m *Manager) SetObserver(observer Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = observer
}

// StartMonitoring begins watching the configured directory. Each discovered
// file is processed on its own goroutine.
func (m *Manager) StartMonitoring(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	rescan := time.Duration(m.cfg.Workflow.RescanInterval) * time.Second
	errorRetry := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	watcher := watch.New(m.cfg.Paths.WatchDir, rescan, errorRetry, m.logger, func(path string) {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if _, err := m.ProcessFile(ctx, path); err != nil {
				m.logger.Error("processing aborted", logging.String(logging.FieldAsset, path), logging.Error(err))
			}
		}()
	})
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	m.watcher = watcher
	m.running = true
	m.logger.Info("monitoring started", logging.String("watch_dir", m.cfg.Paths.WatchDir))
	return nil
}

// StopMonitoring halts discovery and waits for in-flight runs up to the
// configured stop timeout. Runs still going after the timeout keep running;
// their history rows will reach a terminal state when they finish.
func (m *Manager) StopMonitoring() {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	wasRunning := m.running
	m.running = false
	m.mu.Unlock()

	if !wasRunning {
		return
	}

	timeout := time.Duration(m.cfg.Workflow.StopTimeout) * time.Second
	if watcher != nil {
		watcher.Stop(timeout)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Info("monitoring stopped")
	case <-time.After(timeout):
		m.logger.Warn("in-flight runs still active after stop timeout")
	}
}

// SetBatchConfig changes the concurrency bound for future admissions.
func (m *Manager) SetBatchConfig(limit int) error {
	if err := m.gate.SetLimit(limit); err != nil {
		return err
	}
	m.logger.Info("batch config updated", logging.Int("max_parallel", limit))
	return nil
}

// BatchConfig returns the gate bound and current occupancy.
func (m *Manager) BatchConfig() gate.Snapshot {
	return m.gate.Snapshot()
}

// History lists recorded runs newest first, optionally filtered by status.
func (m *Manager) History(ctx context.Context, statuses ...history.Status) ([]*history.Run, error) {
	return m.store.List(ctx, statuses...)
}

// ClearHistory removes finished runs from the store. The watcher seen-set is
// untouched, so cleared files are not rediscovered.
func (m *Manager) ClearHistory(ctx context.Context) (int64, error) {
	return m.store.ClearFinished(ctx)
}

// AddRule installs or replaces a naming rule at runtime.
func (m *Manager) AddRule(prefix string, steps []naming.Step, category string) {
	m.resolver.AddRule(prefix, steps, category)
	m.logger.Info("rule added", logging.String("prefix", prefix))
}

// RemoveRule deletes a naming rule at runtime.
func (m *Manager) RemoveRule(prefix string) {
	m.resolver.RemoveRule(prefix)
	m.logger.Info("rule removed", logging.String("prefix", prefix))
}

// Rules returns a snapshot of the naming rule table.
func (m *Manager) Rules() map[string]naming.Rule {
	return m.resolver.Rules()
}

func (m *Manager) trackActive(run *history.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[run.ID] = run
}

func (m *Manager) untrackActive(run *history.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, run.ID)
}

func (m *Manager) notify(run *history.Run) {
	m.mu.Lock()
	observer := m.observer
	m.mu.Unlock()
	if observer == nil {
		return
	}
	if run.Status == history.StatusCompleted {
		observer.RunCompleted(run)
	} else {
		observer.RunFailed(run)
	}
}
