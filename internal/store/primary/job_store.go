package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vodworks/internal/models"
	"vodworks/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Job Store Implementation ---

const jobColumns = `id, job_type, segment_id, status, error_message, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID, &job.JobType, &job.SegmentID, &job.Status,
		&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// EnqueueJob inserts a new pending job for the given segment and stage.
func (s *StoreImpl) EnqueueJob(ctx context.Context, segmentID string, jobType models.JobType) (*models.Job, error) {
	query := `
		INSERT INTO processing_jobs (id, job_type, segment_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + jobColumns

	now := time.Now()
	job, err := scanJob(s.db.QueryRow(ctx, query, uuid.New(), jobType, segmentID, models.JobStatusPending, now))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job for segment %s: %w", jobType, segmentID, err)
	}
	return job, nil
}

// PendingJobs returns all pending jobs, oldest first.
func (s *StoreImpl) PendingJobs(ctx context.Context) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM processing_jobs WHERE status = $1 ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, models.JobStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job := &models.Job{}
		err := rows.Scan(
			&job.ID, &job.JobType, &job.SegmentID, &job.Status,
			&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a job by id.
func (s *StoreImpl) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM processing_jobs WHERE id = $1`
	job, err := scanJob(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// MarkJobProcessing claims a pending job. The WHERE clause on status makes
// the claim conditional: if another process (or a prior pass) already moved
// the job out of pending, no row is affected and ErrNotClaimed is returned.
func (s *StoreImpl) MarkJobProcessing(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE processing_jobs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	cmdTag, err := s.db.Exec(ctx, query, models.JobStatusProcessing, time.Now(), id, models.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark job %s processing: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s was not pending: %w", id, store.ErrNotClaimed)
	}
	return nil
}

// MarkJobCompleted records a successful terminal state.
func (s *StoreImpl) MarkJobCompleted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE processing_jobs SET status = $1, updated_at = $2 WHERE id = $3`
	cmdTag, err := s.db.Exec(ctx, query, models.JobStatusCompleted, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to mark completed: %w", id, store.ErrNotFound)
	}
	return nil
}

// MarkJobFailed records a failed terminal state with the handler's message.
func (s *StoreImpl) MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error {
	query := `UPDATE processing_jobs SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`
	cmdTag, err := s.db.Exec(ctx, query, models.JobStatusFailed, message, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to mark failed: %w", id, store.ErrNotFound)
	}
	return nil
}

// ListJobs returns the most recent jobs for display.
func (s *StoreImpl) ListJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM processing_jobs ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job := &models.Job{}
		err := rows.Scan(
			&job.ID, &job.JobType, &job.SegmentID, &job.Status,
			&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// Ensure StoreImpl satisfies the JobStore interface
var _ store.JobStore = (*StoreImpl)(nil)
