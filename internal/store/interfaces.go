package store

import (
	"context"

	"vodworks/internal/models"

	"github.com/google/uuid"
)

// --- Job Store ---

// JobStore persists processing jobs. The worker is the only writer of status
// transitions; producers only enqueue.
type JobStore interface {
	// EnqueueJob inserts a new pending job and returns it.
	EnqueueJob(ctx context.Context, segmentID string, jobType models.JobType) (*models.Job, error)
	// PendingJobs returns all jobs with status pending, oldest first.
	PendingJobs(ctx context.Context) ([]*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// MarkJobProcessing claims a pending job. Returns ErrNotClaimed if the
	// job was not pending (best-effort claim, see worker docs).
	MarkJobProcessing(ctx context.Context, id uuid.UUID) error
	MarkJobCompleted(ctx context.Context, id uuid.UUID) error
	MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error
	// ListJobs returns the most recent jobs for display (CLI, ops API).
	ListJobs(ctx context.Context, limit int) ([]*models.Job, error)
}

// --- Segment Store ---

// SegmentPatch holds the segment fields the worker is allowed to mutate.
// Nil fields are left untouched.
type SegmentPatch struct {
	Transcripts  *string
	Summary      *string
	ThumbnailKey *string
}

type SegmentStore interface {
	GetSegment(ctx context.Context, id string) (*models.Segment, error)
	EditSegment(ctx context.Context, id string, patch SegmentPatch) error
}

// --- Vector Store ---

type VectorStore interface {
	AddEmbedding(ctx context.Context, entry *models.EmbeddingEntry) error
	// DeleteEmbeddingsBySegmentID clears prior chunks so re-vectorizing a
	// segment is idempotent.
	DeleteEmbeddingsBySegmentID(ctx context.Context, segmentID string) error

	Ping(ctx context.Context) error
	Close() error
}
