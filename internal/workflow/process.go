package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"amberpipe/internal/codegen"
	"amberpipe/internal/fileutil"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
	"amberpipe/internal/naming"
	"amberpipe/internal/pipeline"
	"amberpipe/internal/raster"
)

// ProcessFile runs the full pipeline for one file. A failing asset yields a
// run with status failed, never an error; the error return covers only
// admission, persistence, and cancellation problems.
func (m *Manager) ProcessFile(ctx context.Context, path string) (*history.Run, error) {
	if err := m.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire processing slot: %w", err)
	}
	defer m.gate.Release()

	filename := filepath.Base(path)
	res := m.resolver.Resolve(filename)

	run, err := m.store.NewRun(ctx, filename)
	if err != nil {
		return nil, err
	}
	run.Status = history.StatusRunning
	run.Category = res.Category
	if err := m.store.Update(ctx, run); err != nil {
		return nil, err
	}
	m.trackActive(run)
	defer m.untrackActive(run)

	m.logger.Info("processing asset",
		logging.String(logging.FieldAsset, filename),
		logging.String(logging.FieldRunID, run.ID),
		logging.String("category", res.Category))

	img, loadErr := raster.Load(path)
	if loadErr != nil {
		// Undecodable input produces no partial outputs.
		return m.finishFailed(ctx, run, loadErr)
	}

	artifacts := pipeline.NewArtifacts(m.cfg.Paths.OutputDir, res.Descriptor)
	if _, err := artifacts.SaveOriginal(img); err != nil {
		return m.finishFailed(ctx, run, err)
	}

	result, runErr := m.runner.Run(ctx, res, img, artifacts)
	if runErr != nil {
		return m.finishFailed(ctx, run, runErr)
	}
	run.Outcomes = result.Outcomes

	if _, err := codegen.WriteMetadata(m.cfg.Paths.OutputDir, res, path, ""); err != nil {
		return m.finishFailed(ctx, run, err)
	}

	// Commit before regenerating so concurrent completions each see the
	// other in the store.
	now := time.Now().UTC()
	run.Status = history.StatusCompleted
	run.FinishedAt = &now
	if err := m.store.Update(ctx, run); err != nil {
		return nil, err
	}
	if err := m.regenerateHeader(ctx); err != nil {
		return m.finishFailed(ctx, run, err)
	}
	m.archiveOriginal(path, filename)

	m.logger.Info("asset processed",
		logging.String(logging.FieldAsset, filename),
		logging.String(logging.FieldRunID, run.ID),
		logging.Int("steps", len(run.Outcomes)))
	m.notify(run)
	return run, nil
}

// archiveOriginal keeps a verified copy of the source bytes in the staging
// directory. Archiving is best effort and never fails the run.
func (m *Manager) archiveOriginal(path, filename string) {
	dst := filepath.Join(m.cfg.Paths.StagingDir, filename)
	if err := fileutil.CopyFileVerified(path, dst); err != nil {
		m.logger.Warn("archive original",
			logging.String(logging.FieldAsset, filename),
			logging.Error(err))
	}
}

func (m *Manager) finishFailed(ctx context.Context, run *history.Run, cause error) (*history.Run, error) {
	now := time.Now().UTC()
	run.Status = history.StatusFailed
	run.ErrorMessage = cause.Error()
	run.FinishedAt = &now
	if err := m.store.Update(ctx, run); err != nil {
		return nil, err
	}

	m.logger.Warn("asset failed",
		logging.String(logging.FieldAsset, run.Filename),
		logging.String(logging.FieldRunID, run.ID),
		logging.Error(cause))
	m.notify(run)
	return run, nil
}

// regenerateHeader rewrites AssetIDs.h from every completed run, oldest
// first so identifiers stay stable as assets arrive. headerMu serializes
// concurrent completions; the caller has already committed its run, so the
// last writer always covers every completed asset.
func (m *Manager) regenerateHeader(ctx context.Context) error {
	m.headerMu.Lock()
	defer m.headerMu.Unlock()

	completed, err := m.store.List(ctx, history.StatusCompleted)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(completed))
	seen := make(map[string]struct{}, len(completed))
	// List returns newest first.
	for i := len(completed) - 1; i >= 0; i-- {
		name := naming.Parse(completed[i].Filename).NameWithoutExt
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	_, err = m.generator.WriteHeader(names)
	return err
}
