package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"amberpipe/internal/config"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
	"amberpipe/internal/naming"
	"amberpipe/internal/raster"
)

// Result is the outcome of one run: the per-step ledger and the final image
// artifacts.
type Result struct {
	Outcomes      []history.StepOutcome
	Final         *image.NRGBA
	ProcessedPath string
	ResizedPath   string
}

// Runner executes processing plans. Step failures are recorded, never
// propagated; the run carries on with the last good image.
type Runner struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
}

// NewRunner builds a runner over the given registry.
func NewRunner(cfg *config.Config, registry *Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, registry: registry, logger: logging.WithComponent(logger, "pipeline")}
}

// Run walks the plan for one asset. It returns an error only when the
// context is cancelled or the final artifacts cannot be written; individual
// step failures end up in the outcome ledger instead.
func (r *Runner) Run(ctx context.Context, res naming.Resolution, img *image.NRGBA, artifacts *Artifacts) (*Result, error) {
	st := &State{Image: img, Resolution: res, Artifacts: artifacts}
	result := &Result{}

	for _, step := range res.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		handler, ok := r.registry.Lookup(step)
		if !ok {
			r.logger.Warn("unknown step skipped",
				logging.String(logging.FieldAsset, res.FullName),
				logging.String(logging.FieldStep, step.String()))
			continue
		}

		snapshot := st.Image
		st.Details = nil
		if err := handler.Apply(ctx, st); err != nil {
			st.Image = snapshot
			result.Outcomes = append(result.Outcomes, history.StepOutcome{
				Step:   step.String(),
				Status: history.OutcomeFailed,
				Error:  err.Error(),
			})
			r.logger.Warn("step failed, continuing",
				logging.String(logging.FieldAsset, res.FullName),
				logging.String(logging.FieldStep, step.String()),
				logging.Error(err))
			continue
		}

		result.Outcomes = append(result.Outcomes, history.StepOutcome{
			Step:    step.String(),
			Status:  history.OutcomeCompleted,
			Details: st.Details,
		})
	}

	if !st.Resized {
		width := r.cfg.Processing.TargetWidth
		height := r.cfg.Processing.TargetHeight
		st.Image = raster.Resize(st.Image, width, height)
		path, err := artifacts.SaveResized(st.Image, width, height)
		if err != nil {
			return nil, fmt.Errorf("save resized artifact: %w", err)
		}
		result.ResizedPath = path
	}

	processedPath, err := artifacts.SaveProcessed(st.Image)
	if err != nil {
		return nil, fmt.Errorf("save processed artifact: %w", err)
	}

	result.Final = st.Image
	result.ProcessedPath = processedPath
	return result, nil
}
