package main

import (
	"strconv"

	"github.com/spf13/pflag"

	"mandelmovie/internal/config"
)

// renderFlags mirrors the [render] and [parallel] config sections. Only
// flags the user actually set override the loaded config.
type renderFlags struct {
	centerX   float64
	centerY   float64
	scale     float64
	width     int
	height    int
	maxIter   int
	frames    int
	prefix    string
	quality   int
	threads   int
	processes int
	isolation string
	failFast  bool
}

func (f *renderFlags) bindGeometry(fs *pflag.FlagSet) {
	def := config.Default()
	fs.Float64VarP(&f.centerX, "center-x", "x", def.Render.CenterX, "Real coordinate of the zoom centre")
	fs.Float64VarP(&f.centerY, "center-y", "y", def.Render.CenterY, "Imaginary coordinate of the zoom centre")
	fs.Float64VarP(&f.scale, "scale", "s", def.Render.Scale, "Width of the first frame in plane units")
	fs.IntVarP(&f.width, "width", "W", def.Render.Width, "Frame width in pixels")
	fs.IntVarP(&f.height, "height", "H", def.Render.Height, "Frame height in pixels")
	fs.IntVarP(&f.maxIter, "max-iterations", "m", def.Render.MaxIterations, "Iteration cap per pixel")
	fs.IntVarP(&f.frames, "frames", "n", def.Render.Frames, "Total number of frames in the animation")
	fs.StringVarP(&f.prefix, "output", "o", def.Render.OutputPrefix, "Output file prefix (frames are <prefix>NN.jpg)")
	fs.IntVarP(&f.quality, "quality", "q", def.Render.JPEGQuality, "JPEG quality (1-100)")
	fs.IntVarP(&f.threads, "threads", "t", def.Parallel.Threads, "Goroutines per frame (1-20)")
}

func (f *renderFlags) bindParallel(fs *pflag.FlagSet) {
	def := config.Default()
	fs.IntVarP(&f.processes, "processes", "c", def.Parallel.Processes, "Number of worker processes")
	fs.StringVar(&f.isolation, "isolation", def.Parallel.Isolation, "Worker isolation: process or goroutine")
	fs.BoolVar(&f.failFast, "fail-on-worker-error", def.Parallel.FailOnWorkerError, "Exit non-zero when any worker fails")
}

// apply copies every flag the user set onto cfg.
func (f *renderFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string) bool {
		flag := fs.Lookup(name)
		return flag != nil && flag.Changed
	}
	if set("center-x") {
		cfg.Render.CenterX = f.centerX
	}
	if set("center-y") {
		cfg.Render.CenterY = f.centerY
	}
	if set("scale") {
		cfg.Render.Scale = f.scale
	}
	if set("width") {
		cfg.Render.Width = f.width
	}
	if set("height") {
		cfg.Render.Height = f.height
	}
	if set("max-iterations") {
		cfg.Render.MaxIterations = f.maxIter
	}
	if set("frames") {
		cfg.Render.Frames = f.frames
	}
	if set("output") {
		cfg.Render.OutputPrefix = f.prefix
	}
	if set("quality") {
		cfg.Render.JPEGQuality = f.quality
	}
	if set("threads") {
		cfg.Parallel.Threads = f.threads
	}
	if set("processes") {
		cfg.Parallel.Processes = f.processes
	}
	if set("isolation") {
		cfg.Parallel.Isolation = f.isolation
	}
	if set("fail-on-worker-error") {
		cfg.Parallel.FailOnWorkerError = f.failFast
	}
}

// geometryArgs serializes the render settings of cfg so that a worker
// process reproduces them exactly.
func geometryArgs(cfg *config.Config) []string {
	return []string{
		"--center-x=" + formatFloat(cfg.Render.CenterX),
		"--center-y=" + formatFloat(cfg.Render.CenterY),
		"--scale=" + formatFloat(cfg.Render.Scale),
		"--width=" + strconv.Itoa(cfg.Render.Width),
		"--height=" + strconv.Itoa(cfg.Render.Height),
		"--max-iterations=" + strconv.Itoa(cfg.Render.MaxIterations),
		"--frames=" + strconv.Itoa(cfg.Render.Frames),
		"--output=" + cfg.Render.OutputPrefix,
		"--quality=" + strconv.Itoa(cfg.Render.JPEGQuality),
		"--threads=" + strconv.Itoa(cfg.Parallel.Threads),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
