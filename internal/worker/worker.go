package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"vodworks/internal/media"
	"vodworks/internal/models"
	"vodworks/internal/store"
	"vodworks/internal/storage"

	log "github.com/sirupsen/logrus"
)

// Media operation contracts consumed by the dispatch handlers. The concrete
// implementations live in internal/media and internal/services; the worker
// only sees these.

type TranscriptGenerator interface {
	GenerateTranscript(ctx context.Context, data []byte) (string, error)
}

type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, transcript string) (string, error)
}

type VideoProcessor interface {
	TranscodeVideo(ctx context.Context, p media.TranscodeParams) error
	ExtractThumbnail(ctx context.Context, p media.ThumbnailParams) ([]byte, error)
}

type SegmentVectorizer interface {
	VectorizeSegment(ctx context.Context, segmentID string) (int, error)
}

// Deps collects everything the worker needs to process jobs.
type Deps struct {
	Jobs        store.JobStore
	Segments    store.SegmentStore
	Storage     storage.Adapter
	Transcripts TranscriptGenerator
	Summaries   SummaryGenerator
	Video       VideoProcessor
	Vectorizer  SegmentVectorizer
}

// Config holds the loop timing and transcode targets.
type Config struct {
	PollInterval time.Duration // idle sleep between empty polls
	ErrorBackoff time.Duration // sleep after a batch-level error
	Qualities    []string      // transcode targets, in order
}

// DefaultConfig returns the production loop settings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		ErrorBackoff: 10 * time.Second,
		Qualities:    []string{"720p", "480p"},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = d.ErrorBackoff
	}
	if len(c.Qualities) == 0 {
		c.Qualities = d.Qualities
	}
	return c
}

// Worker is the process-wide job poller. It has two states, stopped and
// running. Start is idempotent; Stop is cooperative and observed between
// jobs, never mid-job. All job dispatch is sequential: there is exactly one
// loop goroutine and no job-level concurrency, which is what the job and
// segment stores rely on for consistency.
type Worker struct {
	deps Deps
	cfg  Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New constructs a worker. Use SharedInit to install it as the process-wide
// instance.
func New(deps Deps, cfg Config) *Worker {
	return &Worker{deps: deps, cfg: cfg.withDefaults()}
}

// --- Process-wide handle ---
//
// Exactly one worker instance may poll a given job store. The shared handle
// is installed once during app wiring; callers reach it through Shared() to
// kick the poller after enqueueing work.

var (
	sharedMu sync.Mutex
	shared   *Worker
)

// SharedInit installs w as the process-wide worker. The first call wins;
// later calls return the already-installed instance.
func SharedInit(w *Worker) *Worker {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = w
	}
	return shared
}

// Shared returns the installed worker, or nil before SharedInit.
func Shared() *Worker {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return shared
}

func resetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}

// IsActive reports whether the polling loop is running.
func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start launches the polling loop. Calling Start while the worker is already
// running is a logged no-op, so repeated fire-and-forget triggers never
// produce duplicate loops.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		log.Debug("Worker already running, ignoring start request")
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	log.Info("Starting video processing worker")
	go w.run(stopCh, doneCh)
}

// Stop requests a cooperative shutdown. The loop observes the request
// between jobs; an in-flight job always runs to a terminal state.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	select {
	case <-w.stopCh:
		// already requested
	default:
		log.Info("Worker stop requested")
		close(w.stopCh)
	}
}

// Wait blocks until the polling loop has exited. Returns immediately if the
// worker is not running.
func (w *Worker) Wait() {
	w.mu.Lock()
	doneCh := w.doneCh
	running := w.running
	w.mu.Unlock()
	if !running || doneCh == nil {
		return
	}
	<-doneCh
}

func (w *Worker) run(stopCh, doneCh chan struct{}) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(doneCh)
		log.Info("Worker stopped")
	}()

	ctx := context.Background()
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		idle, err := w.runCycle(ctx, stopCh)
		switch {
		case err != nil:
			// A bug in the loop/fetch step, not an individual job failure.
			// Back off and retry; the worker must not take the process down.
			log.WithError(err).Error("Job cycle failed, backing off")
			if !w.sleep(w.cfg.ErrorBackoff, stopCh) {
				return
			}
		case idle:
			if !w.sleep(w.cfg.PollInterval, stopCh) {
				return
			}
		}
	}
}

// runCycle fetches pending jobs and processes them sequentially. It returns
// idle=true when there was nothing to do. Individual job failures are logged
// and recorded on the job; they never abort the rest of the batch.
func (w *Worker) runCycle(ctx context.Context, stopCh chan struct{}) (idle bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job cycle: %v\n%s", r, debug.Stack())
		}
	}()

	jobs, err := w.deps.Jobs.PendingJobs(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return true, nil
	}

	log.WithField("count", len(jobs)).Debug("Processing pending jobs")
	for _, job := range jobs {
		select {
		case <-stopCh:
			return false, nil
		default:
		}
		if err := w.processJob(ctx, job); err != nil {
			log.WithFields(log.Fields{
				"job_id":     job.ID,
				"job_type":   job.JobType,
				"segment_id": job.SegmentID,
			}).WithError(err).Error("Job failed")
		}
	}
	return false, nil
}

// processJob runs one job to a terminal state: claim, refetch, dispatch,
// record outcome. A failure is durably recorded via MarkJobFailed before the
// error is returned to the batch loop.
func (w *Worker) processJob(ctx context.Context, job *models.Job) error {
	fields := log.Fields{
		"job_id":     job.ID,
		"job_type":   job.JobType,
		"segment_id": job.SegmentID,
	}
	start := time.Now()

	if err := w.deps.Jobs.MarkJobProcessing(ctx, job.ID); err != nil {
		if errors.Is(err, store.ErrNotClaimed) {
			log.WithFields(fields).Debug("Job no longer pending, skipping")
			return nil
		}
		return fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	log.WithFields(fields).Info("Job started")

	// The pending fetch and the claim are not one transaction; refetch so
	// dispatch sees the freshest row. Best-effort staleness mitigation, not
	// a correctness guarantee.
	fresh, err := w.deps.Jobs.GetJob(ctx, job.ID)
	if err != nil {
		msg := fmt.Sprintf("refetch job: %v", err)
		if mErr := w.deps.Jobs.MarkJobFailed(ctx, job.ID, msg); mErr != nil {
			log.WithFields(fields).WithError(mErr).Error("Failed to record job failure")
		}
		return fmt.Errorf("refetch job %s: %w", job.ID, err)
	}

	res, err := w.dispatch(ctx, fresh)
	if err != nil {
		if mErr := w.deps.Jobs.MarkJobFailed(ctx, job.ID, err.Error()); mErr != nil {
			log.WithFields(fields).WithError(mErr).Error("Failed to record job failure")
		}
		return err
	}

	if res.Warning != nil {
		log.WithFields(fields).WithError(res.Warning).Warn("Job completed with warning")
	}
	if err := w.deps.Jobs.MarkJobCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("mark job %s completed: %w", job.ID, err)
	}

	fields["duration"] = time.Since(start).Round(time.Millisecond).String()
	if res.ChunksCreated > 0 {
		fields["chunks_created"] = res.ChunksCreated
	}
	log.WithFields(fields).Info("Job completed")
	return nil
}

// sleep waits for d or a stop request, whichever comes first. Returns false
// when the worker should exit.
func (w *Worker) sleep(d time.Duration, stopCh chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}
