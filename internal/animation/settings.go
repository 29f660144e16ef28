// Package animation derives the geometry of each zoom frame and renders frame
// ranges to JPEG files.
package animation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"mandelmovie/internal/config"
	"mandelmovie/internal/raster"
	"mandelmovie/internal/render"
)

// ZoomFactor is the total zoom applied over a full animation.
const ZoomFactor = 4.0

// ErrInvalidSettings reports settings that cannot produce any frame.
var ErrInvalidSettings = errors.New("invalid animation settings")

// Settings holds everything needed to render any frame of one animation.
type Settings struct {
	CenterX       float64
	CenterY       float64
	BaseScale     float64
	Width         int
	Height        int
	MaxIterations int
	TotalFrames   int
	Threads       int
	OutputPrefix  string
	JPEGQuality   int
}

// SettingsFromConfig copies the render and parallel sections of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		CenterX:       cfg.Render.CenterX,
		CenterY:       cfg.Render.CenterY,
		BaseScale:     cfg.Render.Scale,
		Width:         cfg.Render.Width,
		Height:        cfg.Render.Height,
		MaxIterations: cfg.Render.MaxIterations,
		TotalFrames:   cfg.Render.Frames,
		Threads:       cfg.Parallel.Threads,
		OutputPrefix:  cfg.Render.OutputPrefix,
		JPEGQuality:   cfg.Render.JPEGQuality,
	}
}

// Validate fails fast on settings that would make every frame fail.
func (s Settings) Validate() error {
	var problems []string
	if s.Width <= 0 || s.Height <= 0 {
		problems = append(problems, fmt.Sprintf("image dimensions must be positive (got %dx%d)", s.Width, s.Height))
	} else if s.Width > raster.MaxPixels || s.Height > raster.MaxPixels || s.Width*s.Height > raster.MaxPixels {
		problems = append(problems, fmt.Sprintf("image must not exceed %d pixels (got %dx%d)", raster.MaxPixels, s.Width, s.Height))
	}
	if err := render.ValidateThreads(s.Threads); err != nil {
		problems = append(problems, err.Error())
	}
	if s.TotalFrames <= 0 {
		problems = append(problems, fmt.Sprintf("frame count must be positive (got %d)", s.TotalFrames))
	}
	if math.IsNaN(s.BaseScale) || math.IsInf(s.BaseScale, 0) || s.BaseScale <= 0 {
		problems = append(problems, fmt.Sprintf("scale must be a positive number (got %g)", s.BaseScale))
	}
	if math.IsNaN(s.CenterX) || math.IsInf(s.CenterX, 0) || math.IsNaN(s.CenterY) || math.IsInf(s.CenterY, 0) {
		problems = append(problems, "center must be finite")
	}
	if s.MaxIterations < 0 {
		problems = append(problems, fmt.Sprintf("max iterations must not be negative (got %d)", s.MaxIterations))
	}
	if strings.TrimSpace(s.OutputPrefix) == "" {
		problems = append(problems, "output prefix must be set")
	}
	if s.JPEGQuality < 0 || s.JPEGQuality > 100 {
		problems = append(problems, fmt.Sprintf("jpeg quality must be between 1 and 100 (got %d)", s.JPEGQuality))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

func (s Settings) quality() int {
	if s.JPEGQuality <= 0 {
		return raster.DefaultJPEGQuality
	}
	return s.JPEGQuality
}

// FrameSpec fully determines the content of one frame.
type FrameSpec struct {
	Index         int
	Scale         float64
	YScale        float64
	Viewport      render.Viewport
	MaxIterations int
	Output        string
}

// SpecFor derives the frame at index. The horizontal extent grows
// exponentially from BaseScale to BaseScale*ZoomFactor over TotalFrames, and
// the vertical extent follows the image aspect ratio.
func (s Settings) SpecFor(index int) (FrameSpec, error) {
	if s.TotalFrames <= 0 {
		return FrameSpec{}, fmt.Errorf("%w: frame count must be positive (got %d)", ErrInvalidSettings, s.TotalFrames)
	}
	if index < 0 || index >= s.TotalFrames {
		return FrameSpec{}, fmt.Errorf("%w: frame index %d outside [0,%d)", ErrInvalidSettings, index, s.TotalFrames)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return FrameSpec{}, fmt.Errorf("%w: image dimensions must be positive (got %dx%d)", ErrInvalidSettings, s.Width, s.Height)
	}
	scale := s.BaseScale * math.Pow(ZoomFactor, float64(index)/float64(s.TotalFrames))
	yscale := scale / float64(s.Width) * float64(s.Height)
	return FrameSpec{
		Index:         index,
		Scale:         scale,
		YScale:        yscale,
		Viewport:      render.Centered(s.CenterX, s.CenterY, scale, yscale),
		MaxIterations: s.MaxIterations,
		Output:        OutputPath(s.OutputPrefix, index),
	}, nil
}

// OutputPath names frame index as "<prefix><index+1, two digits>.jpg".
func OutputPath(prefix string, index int) string {
	return fmt.Sprintf("%s%02d.jpg", prefix, index+1)
}
