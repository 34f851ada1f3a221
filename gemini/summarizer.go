// Package gemini summarizes snippet diffs using Google Gemini.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Summarizer = (*Summarizer)(nil)

// Summarizer implements snipwatch.Summarizer using Google Gemini.
type Summarizer struct {
	client  GenerativeClient
	model   string
	timeout time.Duration
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithTimeout sets the timeout for API calls.
func WithTimeout(d time.Duration) SummarizerOption {
	return func(s *Summarizer) {
		s.timeout = d
	}
}

// NewSummarizer creates a new Summarizer.
func NewSummarizer(client GenerativeClient, model string, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		client:  client,
		model:   model,
		timeout: snipwatch.SummaryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the summary label.
func (s *Summarizer) Name() string {
	return snipwatch.BackendGemini.Label()
}

// Summarize asks Gemini for a short description of diff.
func (s *Summarizer) Summarize(ctx context.Context, diff string) (string, error) {
	if snipwatch.Blank(diff) {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*Content{{
		Parts: []*Part{{Text: snipwatch.SummaryInput(diff)}},
	}}

	resp, err := s.client.GenerateContent(ctx, s.model, contents, BuildConfig())
	if err != nil {
		return "", s.unavailable(err)
	}
	if resp == nil {
		return "", s.unavailable(errors.New("returned nil response"))
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return "", s.unavailable(errors.New("empty response"))
	}
	return summary, nil
}

func (s *Summarizer) unavailable(err error) error {
	return &snipwatch.SummaryUnavailableError{Backend: s.Name(), Err: err}
}

// BuildConfig returns the GenerateContentConfig for summary calls.
func BuildConfig() *GenerateContentConfig {
	temp := float32(0.2)
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{Text: snipwatch.SummaryPrompt}},
		},
		Temperature: &temp,
	}
}

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Parts []*Part
}

// Part represents a part of a message.
type Part struct {
	Text string
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
}

// GenerateContentResponse holds the response from content generation.
type GenerateContentResponse struct {
	Text string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error)
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	return m.GenerateContentFn(ctx, model, contents, config)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
