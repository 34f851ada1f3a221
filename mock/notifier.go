package mock

import (
	"context"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of snipwatch.Notifier.
type Notifier struct {
	NotifyFn     func(ctx context.Context, settings snipwatch.Settings, change snipwatch.Change) error
	ConfiguredFn func(settings snipwatch.Settings) bool
	NameValue    string
}

func (n *Notifier) Notify(ctx context.Context, settings snipwatch.Settings, change snipwatch.Change) error {
	return n.NotifyFn(ctx, settings, change)
}

func (n *Notifier) Configured(settings snipwatch.Settings) bool {
	return n.ConfiguredFn(settings)
}

func (n *Notifier) Name() string {
	return n.NameValue
}
