package services

import (
	"context"
	"errors"
	"fmt"

	"vodworks/internal/chunking"
	"vodworks/internal/models"
	"vodworks/internal/store"

	log "github.com/sirupsen/logrus"
)

// SegmentVectorizer chunks a segment's transcript, embeds each chunk, and
// persists the vectors. Re-running on the same segment replaces prior chunks.
type SegmentVectorizer struct {
	segments  store.SegmentStore
	vectors   store.VectorStore
	embedder  EmbeddingService
	maxTokens int
	overlap   int
}

// NewSegmentVectorizer creates a vectorizer over the given stores.
func NewSegmentVectorizer(segments store.SegmentStore, vectors store.VectorStore, embedder EmbeddingService, maxTokens, overlap int) *SegmentVectorizer {
	return &SegmentVectorizer{
		segments:  segments,
		vectors:   vectors,
		embedder:  embedder,
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

// VectorizeSegment returns the number of chunks created. A segment without a
// transcript vectorizes to zero chunks; that is not an error.
func (v *SegmentVectorizer) VectorizeSegment(ctx context.Context, segmentID string) (int, error) {
	seg, err := v.segments.GetSegment(ctx, segmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("segment not found: %s", segmentID)
		}
		return 0, fmt.Errorf("load segment %s: %w", segmentID, err)
	}

	if seg.Transcripts == nil || *seg.Transcripts == "" {
		log.WithField("segment_id", segmentID).Info("Segment has no transcript, nothing to vectorize")
		return 0, nil
	}

	chunks := chunking.ChunkTranscript(*seg.Transcripts, v.maxTokens, v.overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := v.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("generate embeddings for segment %s: %w", segmentID, err)
	}

	if err := v.vectors.DeleteEmbeddingsBySegmentID(ctx, segmentID); err != nil {
		return 0, fmt.Errorf("clear prior embeddings for segment %s: %w", segmentID, err)
	}
	for i, c := range chunks {
		entry := &models.EmbeddingEntry{
			SegmentID:  segmentID,
			ChunkIndex: c.Index,
			ChunkText:  c.Text,
			Vector:     vectors[i],
		}
		if err := v.vectors.AddEmbedding(ctx, entry); err != nil {
			return 0, fmt.Errorf("store embedding %d for segment %s: %w", c.Index, segmentID, err)
		}
	}

	log.WithFields(log.Fields{"segment_id": segmentID, "chunks": len(chunks)}).Info("Vectorized segment transcript")
	return len(chunks), nil
}
