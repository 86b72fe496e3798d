package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranscriptService generates transcripts from video/audio buffers via
// the OpenAI audio transcription API.
type OpenAITranscriptService struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriptService creates a new transcript service.
func NewOpenAITranscriptService(apiKey, model string) (*OpenAITranscriptService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for transcript generation")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriptService{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (s *OpenAITranscriptService) Model() string { return s.model }

// GenerateTranscript transcribes the given media buffer. The FilePath field
// only names the upload; the bytes come from the reader.
func (s *OpenAITranscriptService) GenerateTranscript(ctx context.Context, data []byte) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		Reader:   bytes.NewReader(data),
		FilePath: "segment.mp4",
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return resp.Text, nil
}
