package services

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"

	log "github.com/sirupsen/logrus"
)

// EmbeddingService turns transcript chunks into vectors.
type EmbeddingService interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Dimension() int
	ModelName() string
}

// OpenAIEmbeddingProvider implements EmbeddingService using the OpenAI API.
type OpenAIEmbeddingProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAIEmbeddingProvider creates a new OpenAI embedding provider.
func NewOpenAIEmbeddingProvider(apiKey, modelID string) (*OpenAIEmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for embeddings")
	}

	var dim int
	switch modelID {
	case string(openai.AdaEmbeddingV2), "text-embedding-3-small":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	default:
		log.Warnf("Unknown OpenAI embedding model '%s', defaulting dimension to 1536", modelID)
		dim = 1536
	}

	return &OpenAIEmbeddingProvider{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(modelID),
		dim:    dim,
	}, nil
}

func (p *OpenAIEmbeddingProvider) Dimension() int    { return p.dim }
func (p *OpenAIEmbeddingProvider) ModelName() string { return string(p.model) }

// GenerateEmbeddings embeds a batch of chunk texts in one API call.
func (p *OpenAIEmbeddingProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error generating embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI API returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([]pgvector.Vector, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) != p.dim {
			return nil, fmt.Errorf("OpenAI API returned unexpected embedding dimension: got %d, want %d", len(d.Embedding), p.dim)
		}
		vectors[i] = pgvector.NewVector(d.Embedding)
	}
	return vectors, nil
}

var _ EmbeddingService = (*OpenAIEmbeddingProvider)(nil)
