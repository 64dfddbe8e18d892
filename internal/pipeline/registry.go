package pipeline

import (
	"context"
	"image"
	"image/color"

	"amberpipe/internal/config"
	"amberpipe/internal/naming"
	"amberpipe/internal/normalmap"
	"amberpipe/internal/raster"
	"amberpipe/internal/segment"
)

// State carries one asset's image through its plan. Handlers replace Image
// in place; the runner snapshots it around each step so a failed step leaves
// the last good image intact.
type State struct {
	Image      *image.NRGBA
	Resolution naming.Resolution
	Artifacts  *Artifacts

	// Resized is set by any handler that already scaled the image to its
	// target size, which suppresses the fallback resize.
	Resized bool

	// Details holds the handler's structured notes for the step outcome. The
	// runner clears it before each step.
	Details map[string]any
}

// Handler applies one processing step to the state.
type Handler interface {
	Apply(ctx context.Context, st *State) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, st *State) error

// Apply implements Handler.
func (f HandlerFunc) Apply(ctx context.Context, st *State) error {
	return f(ctx, st)
}

const (
	bottomPadding = 10
	shadowAlpha   = 100
)

// Registry maps step identifiers to their handlers.
type Registry struct {
	handlers map[naming.Step]Handler
}

// NewRegistry wires the full step set against the given configuration and
// segmentation capability.
func NewRegistry(cfg *config.Config, segmenter segment.Segmenter) *Registry {
	return &Registry{handlers: map[naming.Step]Handler{
		naming.StepSegment:        segmentHandler(segmenter),
		naming.StepAlignBottom:    HandlerFunc(alignBottom),
		naming.StepGenerateShadow: HandlerFunc(generateShadow),
		naming.StepResizeSquare:   resizeSquareHandler(cfg.Processing.TargetWidth),
		naming.StepSharpen:        HandlerFunc(sharpen),
		naming.StepMakeSeamless:   HandlerFunc(makeSeamless),
		naming.StepGeneratePBR:    generatePBRHandler(cfg.NormalMap),
		naming.StepGenerateLOD:    generateLODHandler(cfg.Processing.LODLevels),
		naming.StepBoxCollision:   HandlerFunc(boxCollision),
		naming.StepDefault:        defaultProcessHandler(cfg.Processing.TargetWidth, cfg.Processing.TargetHeight),
	}}
}

// Lookup returns the handler for a step.
func (r *Registry) Lookup(step naming.Step) (Handler, bool) {
	handler, ok := r.handlers[step]
	return handler, ok
}

func segmentHandler(segmenter segment.Segmenter) Handler {
	return HandlerFunc(func(ctx context.Context, st *State) error {
		matted, err := segmenter.Segment(ctx, st.Image)
		if err != nil {
			return err
		}
		st.Image = matted
		st.Details = map[string]any{"note": "background removed"}
		return nil
	})
}

func alignBottom(_ context.Context, st *State) error {
	st.Image = raster.AlignBottom(st.Image, bottomPadding)
	return nil
}

func generateShadow(_ context.Context, st *State) error {
	bbox, ok := raster.AlphaBounds(st.Image)
	if !ok {
		st.Details = map[string]any{"note": "no opaque content, shadow skipped"}
		return nil
	}
	st.Image = raster.Shadow(st.Image, color.NRGBA{A: shadowAlpha}, bbox.Dx())
	return nil
}

func resizeSquareHandler(target int) Handler {
	return HandlerFunc(func(_ context.Context, st *State) error {
		st.Image = raster.ResizeSquare(st.Image, target)
		st.Resized = true
		st.Details = map[string]any{"width": target, "height": target}
		return nil
	})
}

func sharpen(_ context.Context, st *State) error {
	st.Image = raster.Sharpen(st.Image)
	return nil
}

func makeSeamless(_ context.Context, st *State) error {
	st.Image = raster.MakeSeamless(st.Image)
	return nil
}

func generatePBRHandler(cfg config.NormalMap) Handler {
	return HandlerFunc(func(_ context.Context, st *State) error {
		normal := normalmap.Synthesize(st.Image, normalmap.Options{
			Strength:          cfg.Strength,
			BlurRadius:        cfg.BlurRadius,
			GradientThreshold: cfg.GradientThreshold,
			Smooth:            cfg.Smooth,
		})
		path, err := st.Artifacts.SaveNormal(normal)
		if err != nil {
			return err
		}
		st.Details = map[string]any{"normal_path": path}
		return nil
	})
}

func generateLODHandler(levels int) Handler {
	return HandlerFunc(func(_ context.Context, st *State) error {
		lods := raster.LODLevels(st.Image, levels)
		for i, lod := range lods {
			if _, err := st.Artifacts.SaveLOD(lod, i); err != nil {
				return err
			}
		}
		st.Details = map[string]any{"levels": len(lods)}
		return nil
	})
}

func boxCollision(_ context.Context, st *State) error {
	bounds := raster.CollisionBounds(st.Image)
	st.Details = map[string]any{
		"x":      bounds.Min.X,
		"y":      bounds.Min.Y,
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
	}
	return nil
}

func defaultProcessHandler(width, height int) Handler {
	return HandlerFunc(func(_ context.Context, st *State) error {
		st.Image = raster.Resize(st.Image, width, height)
		st.Resized = true
		st.Details = map[string]any{"width": width, "height": height}
		return nil
	})
}
