package mock

import (
	"context"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of snipwatch.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, diff string) (string, error)
	NameValue   string
}

func (s *Summarizer) Summarize(ctx context.Context, diff string) (string, error) {
	return s.SummarizeFn(ctx, diff)
}

func (s *Summarizer) Name() string {
	return s.NameValue
}
