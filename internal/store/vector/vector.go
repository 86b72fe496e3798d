package vector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vodworks/internal/models"
	"vodworks/internal/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type StoreImpl struct {
	db *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (store.VectorStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("vector store DSN cannot be empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector store DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping vector store: %w", err)
	}
	log.Debug("Connected to PostgreSQL vector store")
	return &StoreImpl{db: pool}, nil
}

func (vs *StoreImpl) Close() error {
	if vs.db != nil {
		vs.db.Close()
	}
	return nil
}

func (vs *StoreImpl) Ping(ctx context.Context) error {
	if vs.db == nil {
		return fmt.Errorf("vector store connection is not initialized")
	}
	return vs.db.Ping(ctx)
}

func (vs *StoreImpl) AddEmbedding(ctx context.Context, entry *models.EmbeddingEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `INSERT INTO segment_embeddings (id, segment_id, chunk_index, chunk_text, vector)
	          VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := vs.db.QueryRow(ctx, query,
		entry.ID, entry.SegmentID, entry.ChunkIndex, entry.ChunkText, entry.Vector,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("add embedding: %w", err)
	}
	return nil
}

func (vs *StoreImpl) DeleteEmbeddingsBySegmentID(ctx context.Context, segmentID string) error {
	query := `DELETE FROM segment_embeddings WHERE segment_id = $1`
	_, err := vs.db.Exec(ctx, query, segmentID)
	if err != nil {
		return fmt.Errorf("delete embeddings: %w", err)
	}
	return nil
}

var _ store.VectorStore = (*StoreImpl)(nil)
