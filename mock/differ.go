package mock

import "github.com/fwojciec/snipwatch"

// Compile-time interface verification.
var _ snipwatch.Differ = (*Differ)(nil)

// Differ is a mock implementation of snipwatch.Differ.
type Differ struct {
	DiffFn func(oldText, newText string) (*snipwatch.Diff, error)
}

func (d *Differ) Diff(oldText, newText string) (*snipwatch.Diff, error) {
	return d.DiffFn(oldText, newText)
}
