package animation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mandelmovie/internal/fractal"
	"mandelmovie/internal/logging"
	"mandelmovie/internal/raster"
	"mandelmovie/internal/render"
	"mandelmovie/internal/workrange"
)

// FrameResult describes one written frame.
type FrameResult struct {
	Index    int
	Path     string
	Duration time.Duration
}

// Generator renders individual frames of one animation.
type Generator struct {
	settings Settings
	mapper   fractal.Mapper
	logger   *slog.Logger
}

// NewGenerator validates settings and returns a generator. A nil mapper
// selects the default palette; a nil logger discards output.
func NewGenerator(settings Settings, mapper fractal.Mapper, logger *slog.Logger) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if mapper == nil {
		mapper = fractal.DefaultMapper()
	}
	return &Generator{
		settings: settings,
		mapper:   mapper,
		logger:   logging.NewComponentLogger(logger, "animation"),
	}, nil
}

// Settings returns the generator's settings.
func (g *Generator) Settings() Settings { return g.settings }

// Generate renders frame index and writes it to its output path. The file
// only appears once the whole frame has been encoded.
func (g *Generator) Generate(ctx context.Context, index int) (FrameResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	spec, err := g.settings.SpecFor(index)
	if err != nil {
		return FrameResult{}, err
	}
	start := time.Now()

	img, err := raster.New(g.settings.Width, g.settings.Height)
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: %w", index, err)
	}
	defer img.Release()

	if err := render.Render(ctx, img, spec.Viewport, spec.MaxIterations, g.mapper, g.settings.Threads); err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: render: %w", index, err)
	}
	if err := ctx.Err(); err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: %w", index, err)
	}
	if err := img.WriteJPEG(spec.Output, g.settings.quality()); err != nil {
		return FrameResult{}, fmt.Errorf("frame %d: %w", index, err)
	}

	result := FrameResult{Index: index, Path: spec.Output, Duration: time.Since(start)}
	logging.WithContext(ctx, g.logger).Info("frame rendered",
		logging.Int(logging.FieldFrame, index),
		logging.Float64("center_x", g.settings.CenterX),
		logging.Float64("center_y", g.settings.CenterY),
		logging.Float64("scale", spec.Scale),
		logging.Float64("y_scale", spec.YScale),
		logging.Int("max_iterations", spec.MaxIterations),
		logging.String("output", spec.Output),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// RunRange renders every frame of r in increasing index order and stops at
// the first failure. Frames written before the failure are returned.
func RunRange(ctx context.Context, gen *Generator, r workrange.Range) ([]FrameResult, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: nil generator", ErrInvalidSettings)
	}
	if r.Start < 0 || r.End > gen.settings.TotalFrames || r.End < r.Start {
		return nil, fmt.Errorf("%w: frame range %s outside [0,%d)", ErrInvalidSettings, r, gen.settings.TotalFrames)
	}
	results := make([]FrameResult, 0, r.Len())
	for idx := r.Start; idx < r.End; idx++ {
		res, err := gen.Generate(ctx, idx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
