package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/textutil"
)

const jobColumns = `id, batch_id, source_path, title, status, output_file, delivered_file,
    artifact_dir, error_message, progress_stage, progress_percent, progress_message,
    created_at, updated_at`

// ErrStatusRegression is returned when an update would move a job backwards
// through the state machine.
var ErrStatusRegression = errors.New("status regression")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var createdAt, updatedAt string
	if err := row.Scan(
		&job.ID,
		&job.BatchID,
		&job.SourcePath,
		&job.Title,
		&job.Status,
		&job.OutputFile,
		&job.DeliveredFile,
		&job.ArtifactDir,
		&job.ErrorMessage,
		&job.ProgressStage,
		&job.ProgressPercent,
		&job.ProgressMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &job, nil
}

// NewJob enqueues a source video for export.
func (s *Store) NewJob(ctx context.Context, sourcePath, batchID string) (*Job, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("source path required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	title := textutil.SanitizeFileName(strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath)))
	if title == "" {
		title = "export"
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (batch_id, source_path, title, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		batchID,
		sourcePath,
		title,
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when not found.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job, enforcing forward-only status
// transitions against the stored state.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	current, err := s.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("job %d not found", job.ID)
	}
	if !CanTransition(current.Status, job.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, current.Status, job.Status)
	}

	job.UpdatedAt = time.Now().UTC()
	_, err = s.execWithRetry(
		ctx,
		`UPDATE jobs SET batch_id = ?, source_path = ?, title = ?, status = ?, output_file = ?,
            delivered_file = ?, artifact_dir = ?, error_message = ?, progress_stage = ?,
            progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		job.BatchID,
		job.SourcePath,
		job.Title,
		job.Status,
		job.OutputFile,
		job.DeliveredFile,
		job.ArtifactDir,
		job.ErrorMessage,
		job.ProgressStage,
		job.ProgressPercent,
		job.ProgressMessage,
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// UpdateProgress persists only the progress fields, leaving status untouched.
func (s *Store) UpdateProgress(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ? AND progress_percent <= ?`,
		job.ProgressStage,
		job.ProgressPercent,
		job.ProgressMessage,
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
		job.ProgressPercent,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// NextForStatuses returns the oldest job in any of the given statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY id LIMIT 1`
	row := s.db.QueryRowContext(ensureContext(ctx), query, args...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next job: %w", err)
	}
	return job, nil
}

// List returns all jobs in queue order, optionally filtered by batch.
func (s *Store) List(ctx context.Context, batchID string) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if strings.TrimSpace(batchID) != "" {
		query += ` WHERE batch_id = ?`
		args = append(args, batchID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Clear removes all jobs. Used by `queue clear` and batch teardown.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves all failed jobs back to pending for another attempt.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = '', progress_stage = '',
            progress_percent = 0, progress_message = '', updated_at = ?
         WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed jobs: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckProcessing returns jobs abandoned mid-stage (from a crashed run)
// to pending so a fresh run re-processes them from the start.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	statuses := make([]string, 0, len(processingStatuses))
	args := make([]any, 0, len(processingStatuses)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for status := range processingStatuses {
		statuses = append(statuses, "?")
		args = append(args, status)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, progress_stage = '', progress_percent = 0,
            progress_message = '', updated_at = ?
         WHERE status IN (`+strings.Join(statuses, ",")+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a single job, used when its output has been downloaded.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Health returns aggregated queue counts.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		default:
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}
