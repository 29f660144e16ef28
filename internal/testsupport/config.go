package testsupport

import (
	"path/filepath"
	"testing"

	"mandelmovie/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a small, fast render config whose output and journal
// live in a per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Render.Width = 32
	cfgVal.Render.Height = 24
	cfgVal.Render.MaxIterations = 50
	cfgVal.Render.Frames = 4
	cfgVal.Render.OutputPrefix = filepath.Join(base, "frames", "mandel")
	cfgVal.Parallel.Processes = 2
	cfgVal.Parallel.Threads = 2
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithFrames sets the animation length.
func WithFrames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Frames = n
	}
}

// WithProcesses sets the worker count.
func WithProcesses(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parallel.Processes = n
	}
}

// WithThreads sets the per-frame goroutine count.
func WithThreads(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parallel.Threads = n
	}
}

// WithIsolation selects process or goroutine workers.
func WithIsolation(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parallel.Isolation = mode
	}
}

// WithDimensions sets the frame size.
func WithDimensions(width, height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Width = width
		b.cfg.Render.Height = height
	}
}

// WithJournalDisabled turns the run journal off.
func WithJournalDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// BaseDir returns the temp directory backing the config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.OutputDir())
}
