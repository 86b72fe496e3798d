package chunking

import (
	"strings"

	"github.com/neurosnap/sentences"
)

const (
	// DefaultMaxTokens defines a reasonable default if not provided.
	DefaultMaxTokens = 200
	// DefaultOverlap defines a reasonable default if not provided.
	DefaultOverlap = 50
)

// Chunk is one window of transcript text.
type Chunk struct {
	Index int
	Text  string
}

// estimateTokens provides a basic word count estimation.
func estimateTokens(text string) int {
	return len(strings.Fields(text))
}

// sentenceOverlap finds sentences at the end of a text block that approximate
// the desired token overlap count, so consecutive chunks share context at
// sentence boundaries rather than cutting mid-sentence.
func sentenceOverlap(text string, overlapTokens int) string {
	if overlapTokens <= 0 || text == "" {
		return ""
	}

	tokenizer := sentences.NewSentenceTokenizer(nil)
	sents := tokenizer.Tokenize(text)
	if len(sents) == 0 {
		return ""
	}

	var overlapSentences []string
	accumulated := 0
	for i := len(sents) - 1; i >= 0; i-- {
		sentenceText := strings.TrimSpace(sents[i].Text)
		if sentenceText == "" {
			continue
		}
		tokens := estimateTokens(sentenceText)
		if accumulated+tokens <= overlapTokens {
			overlapSentences = append([]string{sentenceText}, overlapSentences...)
			accumulated += tokens
			continue
		}
		if len(overlapSentences) == 0 {
			// Sentence is longer than the overlap budget; keep its tail so
			// the overlap never exceeds the chunk window.
			tail := strings.Fields(sentenceText)
			if len(tail) > overlapTokens {
				tail = tail[len(tail)-overlapTokens:]
			}
			overlapSentences = []string{strings.Join(tail, " ")}
		}
		break
	}

	if len(overlapSentences) == 0 {
		return ""
	}
	return strings.Join(overlapSentences, " ") + " "
}

// ChunkTranscript splits a transcript into word windows of at most maxTokens
// words, each starting with a sentence-aligned overlap from the previous
// window. Transcripts are flat prose, so no structure-aware strategies apply.
func ChunkTranscript(text string, maxTokens, overlap int) []Chunk {
	var chunks []Chunk
	text = strings.TrimSpace(text)
	if text == "" {
		return chunks
	}

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxTokens {
		overlap = maxTokens - 1
	}

	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return []Chunk{{Index: 0, Text: strings.Join(words, " ")}}
	}

	current := ""
	currentTokens := 0
	index := 0
	flush := func() {
		finalized := strings.TrimSpace(current)
		chunks = append(chunks, Chunk{Index: index, Text: finalized})
		index++
		current = sentenceOverlap(finalized, overlap)
		currentTokens = estimateTokens(current)
	}

	for _, word := range words {
		if currentTokens+1 > maxTokens {
			flush()
		}
		if current != "" && !strings.HasSuffix(current, " ") {
			current += " "
		}
		current += word
		currentTokens++
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, Chunk{Index: index, Text: strings.TrimSpace(current)})
	}
	return chunks
}
