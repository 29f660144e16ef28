package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mandelmovie/internal/animation"
	"mandelmovie/internal/config"
	"mandelmovie/internal/journal"
	"mandelmovie/internal/logging"
	"mandelmovie/internal/outputlock"
	"mandelmovie/internal/preflight"
	"mandelmovie/internal/scheduler"
)

// workerEnv is appended to the environment of worker processes.
var workerEnv []string

const renderExample = `  mandelmovie render
  mandelmovie render -x -0.743643887037151 -y 0.131825904205330 -s 0.01 -m 2000 -c 8 -t 4
  mandelmovie render -W 640 -H 480 -n 100 -o frames/zoom --isolation goroutine`

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:     "render",
		Short:   "Render every frame of the zoom animation",
		Example: renderExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags.bindGeometry(cmd.Flags())
	flags.bindParallel(cmd.Flags())
	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	settings := animation.SettingsFromConfig(cfg)
	if err := settings.Validate(); err != nil {
		return err
	}

	baseLogger, logCloser, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	var executable string
	if cfg.Parallel.Isolation == config.IsolationProcess {
		if executable, err = os.Executable(); err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
	}
	if err := preflight.Failures(preflight.RunAll(cfg, executable)); err != nil {
		return fmt.Errorf("preflight failed:\n%w", err)
	}

	lock, err := outputlock.Acquire(cfg.Render.OutputPrefix)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			baseLogger.Warn("release output lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(baseLogger, "render"))
	logger.Info("render started",
		logging.String("output_prefix", cfg.Render.OutputPrefix),
		logging.Int("frames", cfg.Render.Frames),
		logging.Int("processes", cfg.Parallel.Processes),
		logging.Int("threads", cfg.Parallel.Threads),
		logging.String("isolation", cfg.Parallel.Isolation),
	)

	store := openJournal(ctx, cfg, runID, logger)
	if store != nil {
		defer store.Close()
	}

	launcher, err := newLauncher(cfg, settings, runID, executable, baseLogger)
	if err != nil {
		return err
	}

	var hookOpts []scheduler.Option
	if store != nil {
		hookOpts = append(hookOpts, scheduler.WithResultHook(func(res scheduler.WorkerResult) {
			if err := store.RecordWorker(context.WithoutCancel(ctx), workerRecord(runID, res)); err != nil {
				logger.Warn("journal worker record failed", logging.Error(err))
			}
		}))
	}

	summary, runErr := scheduler.New(launcher, baseLogger, hookOpts...).Run(ctx, cfg.Render.Frames, cfg.Parallel.Processes)
	failed := summary.Failed()
	if store != nil {
		status, msg := runStatus(summary, runErr)
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, status, len(failed), msg, time.Now()); err != nil {
			logger.Warn("journal finish failed", logging.Error(err))
		}
	}
	if runErr != nil && len(summary.Workers) == 0 {
		return runErr
	}

	printSummary(out, cfg, runID, summary)
	if runErr != nil {
		return runErr
	}
	if len(failed) > 0 && cfg.Parallel.FailOnWorkerError {
		return fmt.Errorf("%d of %d workers failed", len(failed), len(summary.Workers))
	}
	return nil
}

func newLauncher(cfg *config.Config, settings animation.Settings, runID, executable string, logger *slog.Logger) (scheduler.Launcher, error) {
	switch cfg.Parallel.Isolation {
	case config.IsolationGoroutine:
		gen, err := animation.NewGenerator(settings, nil, logger)
		if err != nil {
			return nil, err
		}
		return &scheduler.InProcessLauncher{Generator: gen}, nil
	default:
		launcher, err := scheduler.NewProcessLauncher(executable, workerArgs(cfg, runID))
		if err != nil {
			return nil, err
		}
		launcher.Env = workerEnv
		return launcher, nil
	}
}

// openJournal records the start of the run. Journal problems never stop a
// render; they are logged and the journal is skipped.
func openJournal(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable", "journal_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in `mandelmovie runs`"),
			logging.String(logging.FieldErrorHint, "check journal.path or delete the journal file"),
		)
		return nil
	}
	run := journal.Run{
		ID:            runID,
		OutputPrefix:  cfg.Render.OutputPrefix,
		CenterX:       cfg.Render.CenterX,
		CenterY:       cfg.Render.CenterY,
		Scale:         cfg.Render.Scale,
		Width:         cfg.Render.Width,
		Height:        cfg.Render.Height,
		MaxIterations: cfg.Render.MaxIterations,
		Frames:        cfg.Render.Frames,
		Processes:     cfg.Parallel.Processes,
		Threads:       cfg.Parallel.Threads,
		Isolation:     cfg.Parallel.Isolation,
		StartedAt:     time.Now(),
	}
	if err := store.BeginRun(ctx, run); err != nil {
		logger.Warn("journal begin failed", logging.Error(err))
		_ = store.Close()
		return nil
	}
	return store
}

func workerRecord(runID string, res scheduler.WorkerResult) journal.Worker {
	w := journal.Worker{
		RunID:      runID,
		Worker:     res.Worker,
		StartFrame: res.Frames.Start,
		EndFrame:   res.Frames.End,
		PID:        res.PID,
		ExitCode:   res.ExitCode,
		Duration:   res.Duration,
	}
	if res.Err != nil {
		w.ErrorMessage = res.Err.Error()
	}
	return w
}

func runStatus(summary scheduler.Summary, runErr error) (journal.Status, string) {
	failed := len(summary.Failed())
	switch {
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		return journal.StatusCancelled, runErr.Error()
	case runErr != nil:
		return journal.StatusFailed, runErr.Error()
	case failed == 0:
		return journal.StatusCompleted, ""
	case failed == len(summary.Workers):
		return journal.StatusFailed, "all workers failed"
	default:
		return journal.StatusPartial, fmt.Sprintf("%d of %d workers failed", failed, len(summary.Workers))
	}
}

func printSummary(out io.Writer, cfg *config.Config, runID string, summary scheduler.Summary) {
	colorize := shouldColorize(out)
	p := message.NewPrinter(language.English)

	rows := make([][]string, 0, len(summary.Workers))
	for _, w := range summary.Workers {
		kind := statusOK
		if w.Failed() {
			kind = statusError
		}
		pid := "-"
		if w.PID > 0 {
			pid = strconv.Itoa(w.PID)
		}
		rows = append(rows, []string{
			strconv.Itoa(w.Worker),
			w.Frames.String(),
			p.Sprintf("%d", w.Frames.Len()),
			pid,
			strconv.Itoa(w.ExitCode),
			formatDuration(w.Duration),
			colorizeStatus(kind, statusKindLabel(kind), colorize),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Worker", "Frames", "Count", "PID", "Exit", "Duration", "Status"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))

	completed := summary.FramesCompleted()
	pixels := int64(completed) * int64(cfg.Render.Width) * int64(cfg.Render.Height)
	fmt.Fprintln(out, p.Sprintf("Run %s: %d of %d frames (%d pixels) in %s",
		shortID(runID), completed, cfg.Render.Frames, pixels, formatDuration(summary.Duration)))

	failed := summary.Failed()
	if len(failed) > 0 {
		ids := make([]string, 0, len(failed))
		for _, w := range failed {
			ids = append(ids, strconv.Itoa(w.Worker))
		}
		fmt.Fprintln(out, colorizeStatus(statusWarn,
			fmt.Sprintf("%d of %d workers failed (workers %s); some frames are missing", len(failed), len(summary.Workers), strings.Join(ids, ", ")),
			colorize))
		return
	}
	fmt.Fprintln(out, colorizeStatus(statusOK, "All images generated!", colorize))
	fmt.Fprintf(out, "Stitch them with: %s\n", ffmpegHint(cfg.Render.OutputPrefix))
}

func ffmpegHint(prefix string) string {
	return fmt.Sprintf("ffmpeg -i %s%%02d.jpg -r 50 -q:v 5 %s.mpg", prefix, strings.TrimSuffix(prefix, string(os.PathSeparator)))
}
