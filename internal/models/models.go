package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Job mirrors the processing_jobs table schema. A job is the unit of
// asynchronous work: one processing stage applied to one segment.
type Job struct {
	ID           uuid.UUID `db:"id"`
	JobType      JobType   `db:"job_type"`
	SegmentID    string    `db:"segment_id"`
	Status       string    `db:"status"`
	ErrorMessage *string   `db:"error_message"` // set only when status = failed
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Segment is the content record a job operates on. The worker mutates
// Transcripts, Summary and ThumbnailKey; it never creates or deletes rows.
type Segment struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	VideoKey     *string   `db:"video_key"`
	Transcripts  *string   `db:"transcripts"`
	Summary      *string   `db:"summary"`
	ThumbnailKey *string   `db:"thumbnail_key"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// EmbeddingEntry mirrors the segment_embeddings table schema. Rows are
// produced by vectorize jobs, one per transcript chunk.
type EmbeddingEntry struct {
	ID         uuid.UUID       `db:"id"`
	SegmentID  string          `db:"segment_id"`
	ChunkIndex int             `db:"chunk_index"`
	ChunkText  string          `db:"chunk_text"`
	Vector     pgvector.Vector `db:"vector"`
	CreatedAt  time.Time       `db:"created_at"`
}
