package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mandelmovie/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths receive debug and info records, ErrorOutputPaths receive
	// warnings and errors. A path listed in both is opened once.
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
	// Writer, when set, receives every record and replaces both path lists.
	Writer io.Writer
}

// New constructs a slog logger using the provided options. The returned
// closer releases any log files and must be closed once logging is done.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	var build func(io.Writer) slog.Handler
	switch format {
	case "json":
		build = func(w io.Writer) slog.Handler { return newJSONHandler(w, levelVar, addSource) }
	case "console":
		build = func(w io.Writer) slog.Handler { return newPrettyHandler(w, levelVar, addSource) }
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.Writer != nil {
		return slog.New(build(opts.Writer)), logFiles(nil), nil
	}

	out, errOut, files, err := openStreams(
		defaultSlice(opts.OutputPaths, []string{"stdout"}),
		defaultSlice(opts.ErrorOutputPaths, []string{"stderr"}),
	)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(levelSplitHandler{low: build(out), high: build(errOut)}), files, nil
}

// NewFromConfig creates a logger using application config defaults. Progress
// lines go to stdout and warnings to stderr; the optional log file gets both.
func NewFromConfig(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	outputPaths, errorPaths := StreamPaths(cfg)
	return New(Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorPaths,
	})
}

// StreamPaths returns the output and error destinations configured by cfg.
func StreamPaths(cfg *config.Config) ([]string, []string) {
	outputPaths := []string{"stdout"}
	errorPaths := []string{"stderr"}
	if cfg != nil {
		if file := strings.TrimSpace(cfg.Logging.File); file != "" {
			outputPaths = append(outputPaths, file)
			errorPaths = append(errorPaths, file)
		}
	}
	return outputPaths, errorPaths
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

// logFiles closes every file a logger opened.
type logFiles []*os.File

func (l logFiles) Close() error {
	var errs []error
	for _, f := range l {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStreams(outputPaths, errorPaths []string) (io.Writer, io.Writer, logFiles, error) {
	var files logFiles
	opened := map[string]io.Writer{}

	open := func(paths []string, fallback io.Writer) (io.Writer, error) {
		seen := map[string]struct{}{}
		var writers []io.Writer
		for _, path := range paths {
			trimmed := strings.TrimSpace(path)
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}

			switch trimmed {
			case "stdout":
				writers = append(writers, os.Stdout)
			case "stderr":
				writers = append(writers, os.Stderr)
			default:
				if w, ok := opened[trimmed]; ok {
					writers = append(writers, w)
					continue
				}
				if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return nil, fmt.Errorf("ensure log directory: %w", err)
					}
				}
				file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
				if err != nil {
					return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
				}
				files = append(files, file)
				opened[trimmed] = file
				writers = append(writers, file)
			}
		}
		switch len(writers) {
		case 0:
			return fallback, nil
		case 1:
			return writers[0], nil
		default:
			return io.MultiWriter(writers...), nil
		}
	}

	out, err := open(outputPaths, os.Stdout)
	if err != nil {
		_ = files.Close()
		return nil, nil, nil, err
	}
	errOut, err := open(errorPaths, os.Stderr)
	if err != nil {
		_ = files.Close()
		return nil, nil, nil, err
	}
	return out, errOut, files, nil
}

// levelSplitHandler routes warnings and errors to high and everything else
// to low.
type levelSplitHandler struct {
	low  slog.Handler
	high slog.Handler
}

func (h levelSplitHandler) pick(level slog.Level) slog.Handler {
	if level >= slog.LevelWarn {
		return h.high
	}
	return h.low
}

func (h levelSplitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.pick(level).Enabled(ctx, level)
}

func (h levelSplitHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.pick(record.Level).Handle(ctx, record)
}

func (h levelSplitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelSplitHandler{low: h.low.WithAttrs(attrs), high: h.high.WithAttrs(attrs)}
}

func (h levelSplitHandler) WithGroup(name string) slog.Handler {
	return levelSplitHandler{low: h.low.WithGroup(name), high: h.high.WithGroup(name)}
}
