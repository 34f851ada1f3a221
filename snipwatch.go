// Package snipwatch provides domain types for watching line ranges in remote
// source files and reporting when they change.
package snipwatch

import (
	"context"
	"time"
)

// Snippet is a monitored line range within one file at one branch.
type Snippet struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	FilePath     string `json:"file_path"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
	FileURL      string `json:"file_url"`       // Source reference as added by the user
	Note         string `json:"note"`           // Why the snippet matters
	OriginalCode string `json:"original_code"`  // Content at first baseline
	LastSeenCode string `json:"last_seen_code"` // Content at most recent successful check
}

// Baselined reports whether the snippet has a comparison point.
func (s Snippet) Baselined() bool {
	return s.LastSeenCode != ""
}

// LineRange renders the monitored range as "L<start>-L<end>".
func (s Snippet) LineRange() string {
	return lineRange(s.StartLine, s.EndLine)
}

// RepoName renders "owner/repo".
func (s Snippet) RepoName() string {
	return s.Owner + "/" + s.Repo
}

// Change describes one detected modification of a snippet, ready for delivery.
type Change struct {
	Snippet       Snippet
	Diff          string // Rendered diff body
	Added         int
	Removed       int
	Summary       string // Empty when no summary is available
	SummarySource string // Backend label, e.g. "Gemini"
}

// ConfigStore loads and saves the persisted configuration.
type ConfigStore interface {
	// Load returns the current configuration. A missing file yields defaults.
	Load() (*Config, error)
	// Save persists cfg so that a following Load reproduces it.
	Save(cfg *Config) error
}

// Fetcher retrieves the raw content of the file a reference points to.
type Fetcher interface {
	Fetch(ctx context.Context, ref Reference) (string, error)
}

// Differ computes the line diff between two snippet versions.
type Differ interface {
	Diff(oldText, newText string) (*Diff, error)
}

// Summarizer condenses a diff body into a short natural-language description.
// A blank body yields an empty summary without contacting the backend.
// Failures are returned as *SummaryUnavailableError.
type Summarizer interface {
	Summarize(ctx context.Context, diff string) (string, error)
	// Name is the label shown next to the summary.
	Name() string
}

// Notifier delivers a change to one sink. It returns ErrSinkNotConfigured when
// the settings lack its credentials and *DeliveryError when delivery fails.
type Notifier interface {
	Notify(ctx context.Context, settings Settings, change Change) error
	// Name identifies the sink in logs and reports.
	Name() string
	// Configured reports whether settings carry this sink's credentials.
	Configured(settings Settings) bool
}

// Waiter blocks between cycles. Implementations return ctx.Err() when the
// context is cancelled before d elapses.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(ctx context.Context, d time.Duration) error

// Wait calls f(ctx, d).
func (f WaiterFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerWaiter waits on a real timer.
var TimerWaiter Waiter = WaiterFunc(func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
})
