package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"vodworks/internal/media"
	"vodworks/internal/models"
	"vodworks/internal/store"
	"vodworks/internal/storage"

	"github.com/google/uuid"
)

// --- fake job store ---

type fakeJobStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*models.Job
	order      []uuid.UUID
	history    map[uuid.UUID][]string
	enqueueErr error
	fetchErrs  []error // popped one per PendingJobs call
	fetchHook  func()  // runs inside PendingJobs, before returning
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:    make(map[uuid.UUID]*models.Job),
		history: make(map[uuid.UUID][]string),
	}
}

func (s *fakeJobStore) addJob(segmentID string, jobType models.JobType) *models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(segmentID, jobType)
}

func (s *fakeJobStore) insertLocked(segmentID string, jobType models.JobType) *models.Job {
	job := &models.Job{
		ID:        uuid.New(),
		JobType:   jobType,
		SegmentID: segmentID,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.history[job.ID] = []string{models.JobStatusPending}
	copied := *job
	return &copied
}

func (s *fakeJobStore) EnqueueJob(ctx context.Context, segmentID string, jobType models.JobType) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enqueueErr != nil {
		return nil, s.enqueueErr
	}
	return s.insertLocked(segmentID, jobType), nil
}

func (s *fakeJobStore) PendingJobs(ctx context.Context) ([]*models.Job, error) {
	if s.fetchHook != nil {
		s.fetchHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fetchErrs) > 0 {
		err := s.fetchErrs[0]
		s.fetchErrs = s.fetchErrs[1:]
		return nil, err
	}
	var pending []*models.Job
	for _, id := range s.order {
		if job := s.jobs[id]; job.Status == models.JobStatusPending {
			copied := *job
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (s *fakeJobStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) MarkJobProcessing(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	if job.Status != models.JobStatusPending {
		return fmt.Errorf("job %s was not pending: %w", id, store.ErrNotClaimed)
	}
	job.Status = models.JobStatusProcessing
	s.history[id] = append(s.history[id], models.JobStatusProcessing)
	return nil
}

func (s *fakeJobStore) MarkJobCompleted(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = models.JobStatusCompleted
	s.history[id] = append(s.history[id], models.JobStatusCompleted)
	return nil
}

func (s *fakeJobStore) MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = models.JobStatusFailed
	job.ErrorMessage = &message
	s.history[id] = append(s.history[id], models.JobStatusFailed)
	return nil
}

func (s *fakeJobStore) ListJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*models.Job
	for i := len(s.order) - 1; i >= 0 && len(jobs) < limit; i-- {
		copied := *s.jobs[s.order[i]]
		jobs = append(jobs, &copied)
	}
	return jobs, nil
}

func (s *fakeJobStore) job(id uuid.UUID) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

func (s *fakeJobStore) transitions(id uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history[id]...)
}

func (s *fakeJobStore) jobsOfType(jobType models.JobType, segmentID string) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Job
	for _, id := range s.order {
		job := s.jobs[id]
		if job.JobType == jobType && job.SegmentID == segmentID {
			out = append(out, *job)
		}
	}
	return out
}

// --- fake segment store ---

type fakeSegmentStore struct {
	mu       sync.Mutex
	segments map[string]*models.Segment
	editErr  error
}

func newFakeSegmentStore() *fakeSegmentStore {
	return &fakeSegmentStore{segments: make(map[string]*models.Segment)}
}

func (s *fakeSegmentStore) add(seg *models.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[seg.ID] = seg
}

func (s *fakeSegmentStore) GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, ok := s.segments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *seg
	return &copied, nil
}

func (s *fakeSegmentStore) EditSegment(ctx context.Context, id string, patch store.SegmentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editErr != nil {
		return s.editErr
	}
	seg, ok := s.segments[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Transcripts != nil {
		seg.Transcripts = patch.Transcripts
	}
	if patch.Summary != nil {
		seg.Summary = patch.Summary
	}
	if patch.ThumbnailKey != nil {
		seg.ThumbnailKey = patch.ThumbnailKey
	}
	return nil
}

func (s *fakeSegmentStore) segment(id string) models.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.segments[id]
}

// --- fake storage adapter ---

type uploadRecord struct {
	Key         string
	ContentType string
	Size        int
}

type fakeStorage struct {
	mu      sync.Mutex
	kind    storage.Kind
	objects map[string][]byte
	uploads []uploadRecord
}

func newFakeStorage(kind storage.Kind) *fakeStorage {
	return &fakeStorage{kind: kind, objects: make(map[string][]byte)}
}

func (f *fakeStorage) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeStorage) Kind() storage.Kind { return f.kind }

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) GetBuffer(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	f.uploads = append(f.uploads, uploadRecord{Key: key, ContentType: contentType, Size: len(data)})
	return nil
}

func (f *fakeStorage) uploadLog() []uploadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uploadRecord(nil), f.uploads...)
}

// --- fake media operations ---

type fakeTranscripts struct {
	text string
	err  error
}

func (f *fakeTranscripts) GenerateTranscript(ctx context.Context, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSummaries struct {
	text string
	err  error
	hook func() // runs before returning, used for stop-timing tests
}

func (f *fakeSummaries) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeVideo struct {
	mu             sync.Mutex
	transcodeCalls []media.TranscodeParams
	thumbCalls     []media.ThumbnailParams
	transcodeErr   error
	thumbErr       error
	thumbData      []byte
}

func (f *fakeVideo) TranscodeVideo(ctx context.Context, p media.TranscodeParams) error {
	f.mu.Lock()
	f.transcodeCalls = append(f.transcodeCalls, p)
	f.mu.Unlock()
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	return os.WriteFile(p.OutputPath, []byte("variant-"+p.Quality), 0o600)
}

func (f *fakeVideo) ExtractThumbnail(ctx context.Context, p media.ThumbnailParams) ([]byte, error) {
	f.mu.Lock()
	f.thumbCalls = append(f.thumbCalls, p)
	f.mu.Unlock()
	if f.thumbErr != nil {
		return nil, f.thumbErr
	}
	return f.thumbData, nil
}

func (f *fakeVideo) transcoded() []media.TranscodeParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.TranscodeParams(nil), f.transcodeCalls...)
}

func (f *fakeVideo) thumbnails() []media.ThumbnailParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.ThumbnailParams(nil), f.thumbCalls...)
}

type fakeVectorizer struct {
	mu    sync.Mutex
	n     int
	err   error
	calls []string
}

func (f *fakeVectorizer) VectorizeSegment(ctx context.Context, segmentID string) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, segmentID)
	f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.n, nil
}

// --- test worker assembly ---

type testEnv struct {
	worker     *Worker
	jobs       *fakeJobStore
	segments   *fakeSegmentStore
	storage    *fakeStorage
	transcript *fakeTranscripts
	summaries  *fakeSummaries
	video      *fakeVideo
	vectorizer *fakeVectorizer
}

func newTestEnv(kind storage.Kind) *testEnv {
	env := &testEnv{
		jobs:       newFakeJobStore(),
		segments:   newFakeSegmentStore(),
		storage:    newFakeStorage(kind),
		transcript: &fakeTranscripts{text: "generated transcript text"},
		summaries:  &fakeSummaries{text: "generated summary text"},
		video:      &fakeVideo{thumbData: []byte("jpeg-bytes")},
		vectorizer: &fakeVectorizer{n: 3},
	}
	env.worker = New(Deps{
		Jobs:        env.jobs,
		Segments:    env.segments,
		Storage:     env.storage,
		Transcripts: env.transcript,
		Summaries:   env.summaries,
		Video:       env.video,
		Vectorizer:  env.vectorizer,
	}, Config{
		PollInterval: 10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	})
	return env
}

func strPtr(s string) *string { return &s }
