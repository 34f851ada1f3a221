package mock

import (
	"context"
	"time"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Waiter = (*Waiter)(nil)

// Waiter is a mock implementation of snipwatch.Waiter.
type Waiter struct {
	WaitFn func(ctx context.Context, d time.Duration) error
}

func (w *Waiter) Wait(ctx context.Context, d time.Duration) error {
	return w.WaitFn(ctx, d)
}
