package media

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAISummaryService generates lesson summaries from transcripts.
type OpenAISummaryService struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAISummaryService creates a new summary service using OpenAI.
func NewOpenAISummaryService(apiKey, model, prompt string) (*OpenAISummaryService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for summarization")
	}
	return &OpenAISummaryService{
		client: openai.NewClient(apiKey),
		model:  model,
		prompt: prompt,
	}, nil
}

func (s *OpenAISummaryService) Model() string { return s.model }

// GenerateSummary produces a one-paragraph summary of the transcript.
func (s *OpenAISummaryService) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Summarize this lesson transcript in one paragraph:\n\n%s", transcript),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
