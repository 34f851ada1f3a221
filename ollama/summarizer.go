// Package ollama summarizes snippet diffs using a local Ollama server through
// the eino chat model abstraction.
package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Summarizer = (*Summarizer)(nil)

// Generator abstracts the chat model for testing. *ollama.ChatModel satisfies it.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// NewChatModel creates an eino chat model for the Ollama server at endpoint.
func NewChatModel(ctx context.Context, endpoint, modelName string) (*ollama.ChatModel, error) {
	return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: strings.TrimRight(endpoint, "/"),
		Timeout: snipwatch.SummaryTimeout,
		Model:   modelName,
	})
}

// Summarizer implements snipwatch.Summarizer using a local model.
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
	return snipwatch.BackendOllama.Label()
}

// Summarize asks the local model for a short description of diff.
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
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", s.unavailable(errors.New("response has no message content"))
	}
	return strings.TrimSpace(msg.Content), nil
}

func (s *Summarizer) unavailable(err error) error {
	return &snipwatch.SummaryUnavailableError{Backend: s.Name(), Err: err}
}
