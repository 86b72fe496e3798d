package app

import (
	"context"
	"fmt"
	"time"

	"vodworks/internal/config"
	"vodworks/internal/media"
	"vodworks/internal/models"
	"vodworks/internal/services"
	"vodworks/internal/store"
	"vodworks/internal/store/primary"
	"vodworks/internal/store/vector"
	"vodworks/internal/storage"
	"vodworks/internal/worker"

	log "github.com/sirupsen/logrus"
)

// App wires the stores, media services, storage adapter and the worker
// together. One App exists per process.
type App struct {
	Config *config.Config

	JobStore     store.JobStore
	SegmentStore store.SegmentStore
	VectorStore  store.VectorStore
	Storage      storage.Adapter

	TranscriptService *media.OpenAITranscriptService
	SummaryService    *media.OpenAISummaryService
	EmbeddingService  services.EmbeddingService
	Vectorizer        *services.SegmentVectorizer
	FFmpeg            *media.FFmpeg

	Worker *worker.Worker

	primaryStore *primary.StoreImpl
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initVectorStore(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initStorage(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initMediaServices(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initWorker()

	log.Info("Application initialization complete")
	return app, nil
}

// Close releases database pools. The worker must be stopped first.
func (a *App) Close() {
	if a.VectorStore != nil {
		a.VectorStore.Close()
	}
	if a.primaryStore != nil {
		a.primaryStore.Close()
	}
}

// EnqueueProcessing enqueues the standard stage set for a freshly uploaded
// segment and kicks the worker. Transcript completion chains the summary job
// on its own.
func (a *App) EnqueueProcessing(ctx context.Context, segmentID string) ([]*models.Job, error) {
	stages := []models.JobType{
		models.JobTypeTranscript,
		models.JobTypeTranscode,
		models.JobTypeThumbnail,
	}
	jobs := make([]*models.Job, 0, len(stages))
	for _, stage := range stages {
		job, err := a.JobStore.EnqueueJob(ctx, segmentID, stage)
		if err != nil {
			return jobs, fmt.Errorf("enqueue %s job: %w", stage, err)
		}
		jobs = append(jobs, job)
	}
	a.Worker.Start()
	return jobs, nil
}

// --- Private Helper Methods ---

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Primary.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.primaryStore = ps
	a.JobStore = ps
	a.SegmentStore = ps
	return nil
}

func (a *App) initVectorStore(ctx context.Context) error {
	vs, err := vector.NewStore(ctx, a.Config.Database.Vector.DSN)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	a.VectorStore = vs
	return nil
}

func (a *App) initStorage() error {
	adapter, err := storage.New(a.Config)
	if err != nil {
		return fmt.Errorf("init storage adapter: %w", err)
	}
	log.WithField("kind", adapter.Kind()).Info("Storage adapter initialized")
	a.Storage = adapter
	return nil
}

func (a *App) initMediaServices() error {
	mc := a.Config.Media

	ts, err := media.NewOpenAITranscriptService(mc.OpenAIAPIKey, mc.TranscriptModel)
	if err != nil {
		return fmt.Errorf("init transcript service: %w", err)
	}
	a.TranscriptService = ts

	ss, err := media.NewOpenAISummaryService(mc.OpenAIAPIKey, mc.SummaryModel, mc.SummaryPrompt)
	if err != nil {
		return fmt.Errorf("init summary service: %w", err)
	}
	a.SummaryService = ss

	es, err := services.NewOpenAIEmbeddingProvider(mc.OpenAIAPIKey, mc.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("init embedding service: %w", err)
	}
	a.EmbeddingService = es

	a.Vectorizer = services.NewSegmentVectorizer(
		a.SegmentStore, a.VectorStore, a.EmbeddingService,
		a.Config.Chunking.MaxTokens, a.Config.Chunking.Overlap,
	)
	a.FFmpeg = media.NewFFmpeg(mc.FFmpegPath)
	return nil
}

func (a *App) initWorker() {
	wc := a.Config.Worker
	cfg := worker.Config{
		PollInterval: time.Duration(wc.PollIntervalSeconds) * time.Second,
		ErrorBackoff: time.Duration(wc.ErrorBackoffSeconds) * time.Second,
		Qualities:    wc.Qualities,
	}
	a.Worker = worker.SharedInit(worker.New(worker.Deps{
		Jobs:        a.JobStore,
		Segments:    a.SegmentStore,
		Storage:     a.Storage,
		Transcripts: a.TranscriptService,
		Summaries:   a.SummaryService,
		Video:       a.FFmpeg,
		Vectorizer:  a.Vectorizer,
	}, cfg))
}

func (a *App) cleanupPartialInit() {
	a.Close()
}
