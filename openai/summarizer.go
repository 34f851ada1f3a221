// Package openai summarizes snippet diffs using the OpenAI chat completions
// API through the eino chat model abstraction.
package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Summarizer = (*Summarizer)(nil)

// maxTokens bounds the summary length.
const maxTokens = 256

// Generator abstracts the chat model for testing. *openai.ChatModel satisfies it.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// NewChatModel creates an eino OpenAI chat model. An empty baseURL uses the
// public API endpoint.
func NewChatModel(ctx context.Context, apiKey, modelName, baseURL string) (*openai.ChatModel, error) {
	tokens := maxTokens
	temp := float32(0)
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Timeout:     snipwatch.SummaryTimeout,
		MaxTokens:   &tokens,
		Temperature: &temp,
	})
}

// Summarizer implements snipwatch.Summarizer using an OpenAI chat model.
type Summarizer struct {
	generator Generator
	timeout   time.Duration
}

// NewSummarizer creates a new Summarizer.
func NewSummarizer(generator Generator) *Summarizer {
	return &Summarizer{generator: generator, timeout: snipwatch.SummaryTimeout}
}

// Name returns the summary label.
func (s *Summarizer) Name() string {
	return snipwatch.BackendOpenAI.Label()
}

// Summarize asks the chat model for a short description of diff.
func (s *Summarizer) Summarize(ctx context.Context, diff string) (string, error) {
	if snipwatch.Blank(diff) {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.generator.Generate(ctx, []*schema.Message{
		schema.SystemMessage(snipwatch.SummaryPrompt),
		schema.UserMessage(snipwatch.SummaryInput(diff)),
	})
	if err != nil {
		return "", s.unavailable(err)
	}
	if msg == nil {
		return "", s.unavailable(errors.New("returned nil message"))
	}

	summary := strings.TrimSpace(msg.Content)
	if summary == "" {
		return "", s.unavailable(errors.New("empty completion"))
	}
	return summary, nil
}

func (s *Summarizer) unavailable(err error) error {
	return &snipwatch.SummaryUnavailableError{Backend: s.Name(), Err: err}
}
