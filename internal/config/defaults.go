package config

const (
	defaultCenterX        = 0.0
	defaultCenterY        = 0.0
	defaultScale          = 4.0
	defaultWidth          = 1000
	defaultHeight         = 1000
	defaultMaxIterations  = 1000
	defaultFrames         = 50
	defaultOutputPrefix   = "mandel"
	defaultJPEGQuality    = 90
	defaultProcesses      = 8
	defaultThreads        = 1
	defaultIsolation      = IsolationProcess
	defaultJournalEnabled = true
	defaultJournalPath    = "~/.local/share/mandelmovie/journal.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	// MinThreads and MaxThreads bound parallel.threads.
	MinThreads = 1
	MaxThreads = 20

	// MaxFramePixels caps width*height so a frame buffer stays allocatable.
	MaxFramePixels = 1 << 28
)

const (
	// IsolationProcess renders each frame range in a separate OS process.
	IsolationProcess = "process"
	// IsolationGoroutine renders each frame range on a goroutine of the
	// coordinating process.
	IsolationGoroutine = "goroutine"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Render: Render{
			CenterX:       defaultCenterX,
			CenterY:       defaultCenterY,
			Scale:         defaultScale,
			Width:         defaultWidth,
			Height:        defaultHeight,
			MaxIterations: defaultMaxIterations,
			Frames:        defaultFrames,
			OutputPrefix:  defaultOutputPrefix,
			JPEGQuality:   defaultJPEGQuality,
		},
		Parallel: Parallel{
			Processes: defaultProcesses,
			Threads:   defaultThreads,
			Isolation: defaultIsolation,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
			Path:    defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
