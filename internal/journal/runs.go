package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, status, output_prefix, center_x, center_y, scale, width, height, max_iterations, frames, processes, threads, isolation, failed_workers, error_message, started_at, finished_at"

// BeginRun records a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		run.OutputPrefix,
		run.CenterX,
		run.CenterY,
		run.Scale,
		run.Width,
		run.Height,
		run.MaxIterations,
		run.Frames,
		run.Processes,
		run.Threads,
		run.Isolation,
		run.FailedWorkers,
		nullableString(run.ErrorMessage),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecordWorker stores the outcome of one worker. Recording the same worker
// twice replaces the earlier row.
func (s *Store) RecordWorker(ctx context.Context, w Worker) error {
	pid := sql.NullInt64{Int64: int64(w.PID), Valid: w.PID > 0}
	_, err := s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO workers (
            run_id, worker, start_frame, end_frame, pid, exit_code, duration_ms, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.RunID,
		w.Worker,
		w.StartFrame,
		w.EndFrame,
		pid,
		w.ExitCode,
		w.Duration.Milliseconds(),
		nullableString(w.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("record worker %d of run %s: %w", w.Worker, w.RunID, err)
	}
	return nil
}

// FinishRun stores the final status of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, failedWorkers int, errMsg string, finishedAt time.Time) error {
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, failed_workers = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(status),
		failedWorkers,
		nullableString(errMsg),
		formatTime(finishedAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun looks a run up by id. A unique id prefix of at least four characters
// is accepted as well.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, fmt.Errorf("get run: %w", ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) || len(id) < 4 {
		return Run{}, notFoundOr(id, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	defer rows.Close()
	var matches []Run
	for rows.Next() {
		match, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("get run %s: prefix matches more than one run", id)
	}
}

// Workers returns the recorded workers of a run ordered by worker number.
func (s *Store) Workers(ctx context.Context, runID string) ([]Worker, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, worker, start_frame, end_frame, pid, exit_code, duration_ms, error_message
         FROM workers WHERE run_id = ? ORDER BY worker`, runID)
	if err != nil {
		return nil, fmt.Errorf("list workers of run %s: %w", runID, err)
	}
	defer rows.Close()

	var workers []Worker
	for rows.Next() {
		var (
			w          Worker
			pid        sql.NullInt64
			durationMS int64
			errMsg     sql.NullString
		)
		if err := rows.Scan(&w.RunID, &w.Worker, &w.StartFrame, &w.EndFrame, &pid, &w.ExitCode, &durationMS, &errMsg); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		if pid.Valid {
			w.PID = int(pid.Int64)
		}
		w.Duration = time.Duration(durationMS) * time.Millisecond
		w.ErrorMessage = errMsg.String
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workers of run %s: %w", runID, err)
	}
	return workers, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		status      string
		errMsg      sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&status,
		&run.OutputPrefix,
		&run.CenterX,
		&run.CenterY,
		&run.Scale,
		&run.Width,
		&run.Height,
		&run.MaxIterations,
		&run.Frames,
		&run.Processes,
		&run.Threads,
		&run.Isolation,
		&run.FailedWorkers,
		&errMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	return run, nil
}

func notFoundOr(id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("get run %s: %w", id, err)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
