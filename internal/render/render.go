package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mandelmovie/internal/fractal"
	"mandelmovie/internal/raster"
	"mandelmovie/internal/workrange"
)

const (
	// MinThreads is the smallest supported render worker count.
	MinThreads = 1
	// MaxThreads is the largest supported render worker count.
	MaxThreads = 20
)

// ErrInvalidThreads reports a worker count outside [MinThreads, MaxThreads].
var ErrInvalidThreads = errors.New("number of threads must be between 1 and 20")

// ValidateThreads checks the render worker count.
func ValidateThreads(threads int) error {
	if threads < MinThreads || threads > MaxThreads {
		return fmt.Errorf("%w (got %d)", ErrInvalidThreads, threads)
	}
	return nil
}

// RenderRows computes every pixel of band.
func RenderRows(ctx context.Context, band *raster.Band, vp Viewport, maxIter int, mapper fractal.Mapper) error {
	if mapper == nil {
		mapper = fractal.DefaultMapper()
	}
	width := band.FrameWidth()
	height := band.FrameHeight()
	rows := band.Rows()
	for j := rows.Start; j < rows.End; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < width; i++ {
			x, y := vp.PointAt(i, j, width, height)
			iters := fractal.IterationsAt(x, y, maxIter)
			band.Set(i, j, mapper.ColorOf(iters, maxIter))
		}
	}
	return nil
}

// Render fills img using threads goroutines over disjoint row bands and
// waits for all of them. The first worker error is returned.
func Render(ctx context.Context, img *raster.Image, vp Viewport, maxIter int, mapper fractal.Mapper, threads int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ValidateThreads(threads); err != nil {
		return err
	}
	if err := vp.Validate(); err != nil {
		return err
	}
	bands, err := workrange.Split(img.Height(), threads)
	if err != nil {
		return fmt.Errorf("partition rows: %w", err)
	}

	if len(bands) == 1 {
		return RenderRows(ctx, img.Band(bands[0]), vp, maxIter, mapper)
	}

	errs := make([]error, len(bands))
	var wg sync.WaitGroup
	for idx, rows := range bands {
		band := img.Band(rows)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[idx] = RenderRows(ctx, band, vp, maxIter, mapper)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
