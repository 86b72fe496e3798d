package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"vodworks/internal/media"
	"vodworks/internal/models"
	"vodworks/internal/store"
	"vodworks/internal/storage"

	log "github.com/sirupsen/logrus"
)

// Thumbnail extraction constants: one frame, early in the video, scaled for
// course cards.
const (
	thumbnailSeekTime = 1.0
	thumbnailWidth    = 640
)

// dispatchResult carries handler side-channel output: a warning that should
// not fail the job, and the chunk count from vectorize jobs.
type dispatchResult struct {
	Warning       error
	ChunksCreated int
}

// dispatch routes a job to its type handler. The switch is exhaustive over
// models.JobType; anything else fails the job.
func (w *Worker) dispatch(ctx context.Context, job *models.Job) (dispatchResult, error) {
	switch job.JobType {
	case models.JobTypeTranscript:
		return w.processTranscript(ctx, job)
	case models.JobTypeTranscode:
		return dispatchResult{}, w.processTranscode(ctx, job)
	case models.JobTypeThumbnail:
		return dispatchResult{}, w.processThumbnail(ctx, job)
	case models.JobTypeVectorize:
		return w.processVectorize(ctx, job)
	case models.JobTypeSummary:
		return dispatchResult{}, w.processSummary(ctx, job)
	default:
		return dispatchResult{}, fmt.Errorf("unknown job type %q", job.JobType)
	}
}

// loadSegment fetches the job's segment, translating ErrNotFound into the
// operator-facing precondition message.
func (w *Worker) loadSegment(ctx context.Context, segmentID string) (*models.Segment, error) {
	seg, err := w.deps.Segments.GetSegment(ctx, segmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("segment not found: %s", segmentID)
		}
		return nil, fmt.Errorf("load segment %s: %w", segmentID, err)
	}
	return seg, nil
}

// requireVideo validates the segment has a video and that the object is
// actually present in storage.
func (w *Worker) requireVideo(ctx context.Context, seg *models.Segment) (string, error) {
	if seg.VideoKey == nil || *seg.VideoKey == "" {
		return "", fmt.Errorf("segment %s does not have a video attached", seg.ID)
	}
	key := *seg.VideoKey
	exists, err := w.deps.Storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check video in storage: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("video file not found in storage: %s. The video may have been deleted or the key is incorrect", key)
	}
	return key, nil
}

// processTranscript downloads the video, generates the transcript, writes it
// on the segment, and opportunistically enqueues the follow-up summary job.
// An enqueue failure comes back as a warning, never as a job failure.
func (w *Worker) processTranscript(ctx context.Context, job *models.Job) (dispatchResult, error) {
	seg, err := w.loadSegment(ctx, job.SegmentID)
	if err != nil {
		return dispatchResult{}, err
	}
	key, err := w.requireVideo(ctx, seg)
	if err != nil {
		return dispatchResult{}, err
	}

	buf, err := w.deps.Storage.GetBuffer(ctx, key)
	if err != nil {
		return dispatchResult{}, fmt.Errorf("download video %s: %w", key, err)
	}

	text, err := w.deps.Transcripts.GenerateTranscript(ctx, buf)
	if err != nil {
		return dispatchResult{}, fmt.Errorf("generate transcript: %w", err)
	}

	if err := w.deps.Segments.EditSegment(ctx, seg.ID, store.SegmentPatch{Transcripts: &text}); err != nil {
		return dispatchResult{}, fmt.Errorf("save transcript: %w", err)
	}

	var res dispatchResult
	if _, err := w.deps.Jobs.EnqueueJob(ctx, seg.ID, models.JobTypeSummary); err != nil {
		res.Warning = fmt.Errorf("enqueue follow-up summary job: %w", err)
	}
	return res, nil
}

// processTranscode materializes the original to a temp file and produces one
// upload per target quality, sequentially. Temp files are removed on every
// exit path.
func (w *Worker) processTranscode(ctx context.Context, job *models.Job) error {
	seg, err := w.loadSegment(ctx, job.SegmentID)
	if err != nil {
		return err
	}
	if kind := w.deps.Storage.Kind(); kind != storage.KindR2 {
		return fmt.Errorf("storage backend %q does not support video transcoding", kind)
	}
	key, err := w.requireVideo(ctx, seg)
	if err != nil {
		return err
	}

	buf, err := w.deps.Storage.GetBuffer(ctx, key)
	if err != nil {
		return fmt.Errorf("download video %s: %w", key, err)
	}

	dir, err := os.MkdirTemp("", "vodworks-transcode-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer w.cleanupTempDir(dir)

	ext := path.Ext(key)
	inputPath := filepath.Join(dir, "input"+ext)
	if err := os.WriteFile(inputPath, buf, 0o600); err != nil {
		return fmt.Errorf("write temp input: %w", err)
	}

	for _, quality := range w.cfg.Qualities {
		outputPath := filepath.Join(dir, "output_"+quality+ext)
		if err := w.transcodeAndUpload(ctx, key, quality, inputPath, outputPath); err != nil {
			return fmt.Errorf("failed to transcode video: %w", err)
		}
	}
	return nil
}

func (w *Worker) transcodeAndUpload(ctx context.Context, key, quality, inputPath, outputPath string) error {
	err := w.deps.Video.TranscodeVideo(ctx, media.TranscodeParams{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Quality:    quality,
	})
	if err != nil {
		return err
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return fmt.Errorf("read %s output: %w", quality, err)
	}
	return w.deps.Storage.Upload(ctx, storage.QualityKey(key, quality), data, "video/mp4")
}

// processThumbnail extracts a single frame and records the derived key on the
// segment.
func (w *Worker) processThumbnail(ctx context.Context, job *models.Job) error {
	seg, err := w.loadSegment(ctx, job.SegmentID)
	if err != nil {
		return err
	}
	if kind := w.deps.Storage.Kind(); kind != storage.KindR2 {
		return fmt.Errorf("storage backend %q does not support thumbnail extraction", kind)
	}
	key, err := w.requireVideo(ctx, seg)
	if err != nil {
		return err
	}

	buf, err := w.deps.Storage.GetBuffer(ctx, key)
	if err != nil {
		return fmt.Errorf("download video %s: %w", key, err)
	}

	dir, err := os.MkdirTemp("", "vodworks-thumbnail-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer w.cleanupTempDir(dir)

	inputPath := filepath.Join(dir, "input"+path.Ext(key))
	if err := os.WriteFile(inputPath, buf, 0o600); err != nil {
		return fmt.Errorf("write temp input: %w", err)
	}

	data, err := w.deps.Video.ExtractThumbnail(ctx, media.ThumbnailParams{
		InputPath:  inputPath,
		OutputPath: filepath.Join(dir, "thumb.jpg"),
		Width:      thumbnailWidth,
		SeekTime:   thumbnailSeekTime,
	})
	if err != nil {
		return fmt.Errorf("failed to extract thumbnail: %w", err)
	}

	thumbKey := storage.ThumbnailKey(key)
	if err := w.deps.Storage.Upload(ctx, thumbKey, data, "image/jpeg"); err != nil {
		return fmt.Errorf("failed to extract thumbnail: %w", err)
	}
	return w.deps.Segments.EditSegment(ctx, seg.ID, store.SegmentPatch{ThumbnailKey: &thumbKey})
}

// processVectorize delegates to the vectorizer; the only precondition is the
// segment existing, which the vectorizer checks itself.
func (w *Worker) processVectorize(ctx context.Context, job *models.Job) (dispatchResult, error) {
	chunks, err := w.deps.Vectorizer.VectorizeSegment(ctx, job.SegmentID)
	if err != nil {
		return dispatchResult{}, err
	}
	return dispatchResult{ChunksCreated: chunks}, nil
}

// processSummary generates a summary from the transcript written by a prior
// transcript job.
func (w *Worker) processSummary(ctx context.Context, job *models.Job) error {
	seg, err := w.loadSegment(ctx, job.SegmentID)
	if err != nil {
		return err
	}
	if seg.Transcripts == nil || *seg.Transcripts == "" {
		return fmt.Errorf("segment %s has no transcript to summarize", seg.ID)
	}

	summary, err := w.deps.Summaries.GenerateSummary(ctx, *seg.Transcripts)
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	return w.deps.Segments.EditSegment(ctx, seg.ID, store.SegmentPatch{Summary: &summary})
}

func (w *Worker) cleanupTempDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.WithField("dir", dir).WithError(err).Warn("Failed to clean up temp dir")
	}
}
