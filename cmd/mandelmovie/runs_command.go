package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mandelmovie/internal/journal"
)

const defaultRunsLimit = 20

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past renders from the run journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournalForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultRunsLimit, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newRunsShowCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its workers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournalForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			workers, err := store.Workers(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			p := message.NewPrinter(language.English)
			fmt.Fprintf(out, "Run:        %s\n", run.ID)
			fmt.Fprintf(out, "Status:     %s\n", colorizeStatus(runStatusKind(run.Status), string(run.Status), colorize))
			fmt.Fprintf(out, "Started:    %s\n", formatTimestamp(run.StartedAt))
			fmt.Fprintf(out, "Finished:   %s\n", formatTimestamp(run.FinishedAt))
			fmt.Fprintf(out, "Duration:   %s\n", formatDuration(run.Duration()))
			fmt.Fprintf(out, "Output:     %s\n", run.OutputPrefix)
			fmt.Fprintf(out, "Centre:     (%s, %s)\n", formatFloat(run.CenterX), formatFloat(run.CenterY))
			fmt.Fprintf(out, "Scale:      %s\n", formatFloat(run.Scale))
			fmt.Fprintf(out, "Frames:     %s\n", p.Sprintf("%d of %s at %d iterations", run.Frames, formatSize(run.Width, run.Height), run.MaxIterations))
			fmt.Fprintf(out, "Parallel:   %d %s workers, %d threads\n", run.Processes, run.Isolation, run.Threads)
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
			}
			if len(workers) == 0 {
				fmt.Fprintln(out, "No worker outcomes recorded")
				return nil
			}
			fmt.Fprintln(out, renderWorkersTable(workers, colorize))
			return nil
		},
	}
}

func openJournalForRead(ctx *commandContext) (*journal.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("the run journal is disabled (journal.enabled = false)")
	}
	return journal.Open(cfg.Journal.Path)
}

func renderRunsTable(runs []journal.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatTimestamp(run.StartedAt),
			colorizeStatus(runStatusKind(run.Status), string(run.Status), colorize),
			strconv.Itoa(run.Frames),
			formatSize(run.Width, run.Height),
			strconv.Itoa(run.Processes),
			strconv.Itoa(run.FailedWorkers),
			formatDuration(run.Duration()),
			run.OutputPrefix,
		})
	}
	return renderTable(
		[]string{"ID", "Started", "Status", "Frames", "Size", "Workers", "Failed", "Duration", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func renderWorkersTable(workers []journal.Worker, colorize bool) string {
	rows := make([][]string, 0, len(workers))
	for _, w := range workers {
		kind := statusOK
		if w.ExitCode != 0 || w.ErrorMessage != "" {
			kind = statusError
		}
		pid := "-"
		if w.PID > 0 {
			pid = strconv.Itoa(w.PID)
		}
		rows = append(rows, []string{
			strconv.Itoa(w.Worker),
			fmt.Sprintf("[%d,%d)", w.StartFrame, w.EndFrame),
			pid,
			strconv.Itoa(w.ExitCode),
			formatDuration(w.Duration),
			colorizeStatus(kind, statusKindLabel(kind), colorize),
			w.ErrorMessage,
		})
	}
	return renderTable(
		[]string{"Worker", "Frames", "PID", "Exit", "Duration", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func runStatusKind(status journal.Status) statusKind {
	switch status {
	case journal.StatusCompleted:
		return statusOK
	case journal.StatusPartial, journal.StatusCancelled:
		return statusWarn
	case journal.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}
