package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vodworks/internal/models"
	"vodworks/internal/store"

	"github.com/jackc/pgx/v5"
)

// --- Segment Store Implementation ---

// GetSegment retrieves a segment by id.
func (s *StoreImpl) GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	query := `SELECT id, title, video_key, transcripts, summary, thumbnail_key, created_at, updated_at
	          FROM segments WHERE id = $1`

	seg := &models.Segment{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&seg.ID, &seg.Title, &seg.VideoKey, &seg.Transcripts,
		&seg.Summary, &seg.ThumbnailKey, &seg.CreatedAt, &seg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get segment %s: %w", id, err)
	}
	return seg, nil
}

// EditSegment applies a partial update. Only non-nil patch fields are written;
// the worker never touches the rest of the row.
func (s *StoreImpl) EditSegment(ctx context.Context, id string, patch store.SegmentPatch) error {
	sets := "updated_at = $1"
	args := []interface{}{time.Now()}

	if patch.Transcripts != nil {
		args = append(args, *patch.Transcripts)
		sets += fmt.Sprintf(", transcripts = $%d", len(args))
	}
	if patch.Summary != nil {
		args = append(args, *patch.Summary)
		sets += fmt.Sprintf(", summary = $%d", len(args))
	}
	if patch.ThumbnailKey != nil {
		args = append(args, *patch.ThumbnailKey)
		sets += fmt.Sprintf(", thumbnail_key = $%d", len(args))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE segments SET %s WHERE id = $%d`, sets, len(args))

	cmdTag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to edit segment %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("segment %s not found to edit: %w", id, store.ErrNotFound)
	}
	return nil
}

// Ensure StoreImpl satisfies the SegmentStore interface
var _ store.SegmentStore = (*StoreImpl)(nil)
