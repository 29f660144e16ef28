package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mandelmovie/internal/animation"
	"mandelmovie/internal/config"
	"mandelmovie/internal/logging"
	"mandelmovie/internal/scheduler"
	"mandelmovie/internal/workrange"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    renderFlags
		workerID int
		start    int
		end      int
		runID    string
	)

	cmd := &cobra.Command{
		Use:         "worker",
		Short:       "Render one frame range (launched by render)",
		Hidden:      true,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Workers never read a config file; the coordinator passes every
			// setting on the command line.
			cfg := config.Default()
			flags.apply(cmd.Flags(), &cfg)
			ctx.applyLoggingFlags(&cfg)
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, logCloser, err := newLogger(&cfg)
			if err != nil {
				return err
			}
			defer logCloser.Close()
			runCtx := logging.WithWorker(logging.WithRunID(cmd.Context(), runID), workerID)

			gen, err := animation.NewGenerator(animation.SettingsFromConfig(&cfg), nil, logger)
			if err != nil {
				return err
			}
			frames := workrange.Range{Start: start, End: end}
			if _, err := animation.RunRange(runCtx, gen, frames); err != nil {
				logging.ErrorWithContext(logging.WithContext(runCtx, logger), "worker failed", "worker_failed",
					logging.String("frames", frames.String()),
					logging.Error(err),
				)
				return fmt.Errorf("worker %d: %w", workerID, err)
			}
			return nil
		},
	}

	flags.bindGeometry(cmd.Flags())
	cmd.Flags().IntVar(&workerID, "worker", 0, "Worker number within the run")
	cmd.Flags().IntVar(&start, "start", 0, "First frame index (inclusive)")
	cmd.Flags().IntVar(&end, "end", 0, "Last frame index (exclusive)")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run identifier used in log lines")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// workerArgs builds the worker command line for an assignment.
func workerArgs(cfg *config.Config, runID string) scheduler.ArgsFunc {
	geometry := geometryArgs(cfg)
	logArgs := loggingArgs(cfg)
	return func(a scheduler.Assignment) []string {
		args := []string{
			"worker",
			"--worker=" + strconv.Itoa(a.Worker),
			"--start=" + strconv.Itoa(a.Frames.Start),
			"--end=" + strconv.Itoa(a.Frames.End),
			"--run-id=" + runID,
		}
		args = append(args, geometry...)
		return append(args, logArgs...)
	}
}
