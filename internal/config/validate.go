package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateParallel(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRender() error {
	r := c.Render
	if err := ensurePositiveMap(map[string]int{
		"render.width":  r.Width,
		"render.height": r.Height,
		"render.frames": r.Frames,
	}); err != nil {
		return err
	}
	if r.Width > MaxFramePixels || r.Height > MaxFramePixels || r.Width*r.Height > MaxFramePixels {
		return fmt.Errorf("render.width x render.height must not exceed %d pixels (got %dx%d)", MaxFramePixels, r.Width, r.Height)
	}
	if r.MaxIterations < 0 {
		return errors.New("render.max_iterations must not be negative")
	}
	if !isFinite(r.CenterX) || !isFinite(r.CenterY) {
		return errors.New("render.center_x and render.center_y must be finite")
	}
	if !isFinite(r.Scale) || r.Scale <= 0 {
		return errors.New("render.scale must be a positive finite number")
	}
	if r.JPEGQuality < 1 || r.JPEGQuality > 100 {
		return errors.New("render.jpeg_quality must be between 1 and 100")
	}
	if strings.TrimSpace(r.OutputPrefix) == "" {
		return errors.New("render.output_prefix must be set")
	}
	return nil
}

func (c *Config) validateParallel() error {
	p := c.Parallel
	if p.Processes <= 0 {
		return errors.New("parallel.processes must be positive")
	}
	if p.Threads < MinThreads || p.Threads > MaxThreads {
		return fmt.Errorf("parallel.threads must be between %d and %d (got %d)", MinThreads, MaxThreads, p.Threads)
	}
	switch p.Isolation {
	case IsolationProcess, IsolationGoroutine:
	default:
		return fmt.Errorf("parallel.isolation must be %q or %q (got %q)", IsolationProcess, IsolationGoroutine, p.Isolation)
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path must be set when journal.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
