package mock

import (
	"context"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of snipwatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, ref snipwatch.Reference) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, ref snipwatch.Reference) (string, error) {
	return f.FetchFn(ctx, ref)
}
