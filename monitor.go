package snipwatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ReasonNothingToMonitor is the skip reason for a cycle over an empty store.
const ReasonNothingToMonitor = "nothing to monitor"

// defaultCacheSize bounds the number of raw files kept during one cycle.
const defaultCacheSize = 64

// CycleReport summarizes one pass over all snippets.
type CycleReport struct {
	CycleID string
	Skipped string // Why the cycle did no work, empty otherwise
	NoSink  bool   // No sink had credentials; deliveries were skipped

	Checked   int
	Baselined int
	Changed   int
	Unchanged int
	Failed    int

	Delivered       int
	DeliverySkipped int
	DeliveryFailed  int

	Saved  bool
	Errors []SnippetError
}

// SnippetError records why one snippet could not be checked.
type SnippetError struct {
	URL string
	Err error
}

func (e SnippetError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

// Monitor polls snippets, detects changes and delivers notifications.
// A Monitor runs one cycle at a time; it is not safe for concurrent use.
type Monitor struct {
	Store      ConfigStore
	Fetcher    Fetcher
	Differ     Differ
	Summarizer Summarizer // Resolved once per process; nil disables summaries
	Notifiers  []Notifier
	Waiter     Waiter // Nil uses TimerWaiter
	Logger     *slog.Logger
	CacheSize  int // Raw files cached per cycle; zero uses a default
}

func (m *Monitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Monitor) summarizer() Summarizer {
	if m.Summarizer == nil {
		return NopSummarizer{}
	}
	return m.Summarizer
}

func (m *Monitor) waiter() Waiter {
	if m.Waiter == nil {
		return TimerWaiter
	}
	return m.Waiter
}

// SinkConfigured reports whether at least one notifier has credentials in s.
func (m *Monitor) SinkConfigured(s Settings) bool {
	for _, n := range m.Notifiers {
		if n.Configured(s) {
			return true
		}
	}
	return false
}

// Add starts monitoring reference. The current content is fetched and stored
// as the baseline. Nothing is stored when parsing, fetching or slicing fails.
func (m *Monitor) Add(ctx context.Context, reference, note string) (*Snippet, error) {
	ref, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}

	cfg, err := m.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	snippet := ref.Snippet(note)
	if existing := cfg.FindByURL(snippet.FileURL); existing != nil {
		return nil, &DuplicateReferenceError{Reference: snippet.FileURL, ID: existing.ID}
	}
	if existing := cfg.FindByID(snippet.ID); existing != nil {
		return nil, &DuplicateReferenceError{Reference: existing.FileURL, ID: existing.ID}
	}

	content, err := m.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	code, err := SliceLines(content, ref.StartLine, ref.EndLine)
	if err != nil {
		return nil, err
	}
	snippet.OriginalCode = code
	snippet.LastSeenCode = code

	if err := cfg.Add(snippet); err != nil {
		return nil, err
	}
	if err := m.Store.Save(cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	m.logger().Info("snippet added", "snippet", snippet.FileURL, "id", snippet.ID)
	return &snippet, nil
}

// Remove stops monitoring reference and reports whether a snippet was removed.
func (m *Monitor) Remove(reference string) (bool, error) {
	cfg, err := m.Store.Load()
	if err != nil {
		return false, fmt.Errorf("load config: %w", err)
	}
	if !cfg.RemoveByURL(reference) {
		return false, nil
	}
	if err := m.Store.Save(cfg); err != nil {
		return false, fmt.Errorf("save config: %w", err)
	}
	m.logger().Info("snippet removed", "snippet", reference)
	return true, nil
}

// Run validates the configuration and then runs cycles until ctx is
// cancelled. Cycle errors are logged, never returned. The only errors
// returned are a failed initial load and *ConfigurationError.
func (m *Monitor) Run(ctx context.Context) error {
	cfg, err := m.Store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !m.SinkConfigured(cfg.Settings) {
		return &ConfigurationError{Reason: "no notification sink configured (set webhook_url or telegram_bot_token and telegram_chat_id)"}
	}

	interval := cfg.Interval()
	for {
		if _, err := m.runCycle(ctx); err != nil {
			m.logger().Error("cycle failed", "error", err)
		}
		if ctx.Err() != nil {
			m.logger().Info("monitoring stopped")
			return nil
		}

		// Interval edits take effect without restart.
		if cfg, err := m.Store.Load(); err != nil {
			m.logger().Warn("reload interval", "error", err)
		} else {
			interval = cfg.Interval()
		}

		m.logger().Debug("sleeping", "interval", interval)
		if err := m.waiter().Wait(ctx, interval); err != nil {
			m.logger().Info("monitoring stopped")
			return nil
		}
	}
}

// runCycle converts a panic inside a cycle into an error.
func (m *Monitor) runCycle(ctx context.Context) (report *CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()
	return m.RunCycleOnce(ctx)
}

// RunCycleOnce reloads the configuration and checks every snippet in store
// order. The configuration is saved once, at the end, when any snippet changed.
func (m *Monitor) RunCycleOnce(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{CycleID: uuid.NewString()}
	log := m.logger().With("cycle", report.CycleID)

	cfg, err := m.Store.Load()
	if err != nil {
		return report, fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Snippets) == 0 {
		report.Skipped = ReasonNothingToMonitor
		log.Info("no snippets configured; nothing to monitor")
		return report, nil
	}
	if !m.SinkConfigured(cfg.Settings) {
		report.NoSink = true
		log.Warn("no notification sink configured; deliveries will be skipped")
	}

	size := m.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return report, err
	}

	dirty := false
	for i := range cfg.Snippets {
		if ctx.Err() != nil {
			log.Info("cycle interrupted", "remaining", len(cfg.Snippets)-i)
			break
		}
		s := &cfg.Snippets[i]
		report.Checked++
		changed, err := m.check(ctx, log, cfg.Settings, s, cache, report)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, SnippetError{URL: s.FileURL, Err: err})
			log.Warn("check snippet", "snippet", s.FileURL, "error", err)
			continue
		}
		dirty = dirty || changed
	}

	if dirty {
		if err := m.Store.Save(cfg); err != nil {
			return report, fmt.Errorf("save config: %w", err)
		}
		report.Saved = true
	}

	log.Info("cycle complete",
		"checked", report.Checked,
		"baselined", report.Baselined,
		"changed", report.Changed,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"delivered", report.Delivered,
		"saved", report.Saved,
	)
	return report, nil
}

// check processes one snippet and reports whether its state changed. On error
// the snippet is left untouched.
func (m *Monitor) check(ctx context.Context, log *slog.Logger, settings Settings, s *Snippet, cache *lru.Cache[string, string], report *CycleReport) (bool, error) {
	ref, err := ParseReference(s.FileURL)
	if err != nil {
		return false, err
	}
	content, err := m.fetch(ctx, ref, cache)
	if err != nil {
		return false, err
	}
	code, err := SliceLines(content, ref.StartLine, ref.EndLine)
	if err != nil {
		return false, err
	}

	log.Debug("checking snippet",
		"snippet", s.FileURL,
		"last_seen_hash", shortHash(s.LastSeenCode),
		"new_hash", shortHash(code),
	)

	switch {
	case !s.Baselined() && code == "":
		// Blank content cannot serve as a baseline.
		report.Unchanged++
		return false, nil
	case !s.Baselined():
		s.OriginalCode = code
		s.LastSeenCode = code
		report.Baselined++
		log.Info("initialized snippet baseline", "snippet", s.FileURL)
		return true, nil
	case code == s.LastSeenCode:
		report.Unchanged++
		log.Debug("no change", "snippet", s.FileURL)
		return false, nil
	}

	log.Info("change detected", "snippet", s.FileURL)
	diff, err := m.Differ.Diff(s.LastSeenCode, code)
	if err != nil {
		return false, fmt.Errorf("diff: %w", err)
	}
	change := Change{Snippet: *s, Diff: diff.Body()}
	change.Added, change.Removed = diff.Stats()
	change.Summary, change.SummarySource = m.summarize(ctx, log, change.Diff)

	m.deliver(ctx, log, settings, change, report)

	s.LastSeenCode = code
	report.Changed++
	return true, nil
}

func (m *Monitor) fetch(ctx context.Context, ref Reference, cache *lru.Cache[string, string]) (string, error) {
	key := ref.Owner + "/" + ref.Repo + "/" + ref.Branch + "/" + ref.FilePath
	if content, ok := cache.Get(key); ok {
		return content, nil
	}
	content, err := m.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	cache.Add(key, content)
	return content, nil
}

// summarize never fails: any backend error downgrades to no summary.
func (m *Monitor) summarize(ctx context.Context, log *slog.Logger, body string) (summary, source string) {
	sz := m.summarizer()
	summary, err := sz.Summarize(ctx, body)
	if err != nil {
		log.Warn("summary unavailable", "backend", sz.Name(), "error", err)
		return "", ""
	}
	if summary == "" {
		return "", ""
	}
	return summary, sz.Name()
}

// deliver hands one change to every sink in turn. Changes of distinct
// snippets are therefore delivered in store order, one at a time.
func (m *Monitor) deliver(ctx context.Context, log *slog.Logger, settings Settings, change Change, report *CycleReport) {
	if len(m.Notifiers) == 0 {
		report.DeliverySkipped++
		log.Warn("no notifiers; skipping delivery", "snippet", change.Snippet.FileURL)
		return
	}

	for _, n := range m.Notifiers {
		err := n.Notify(ctx, settings, change)
		switch {
		case err == nil:
			report.Delivered++
			log.Info("notification sent", "sink", n.Name(), "snippet", change.Snippet.FileURL)
		case errors.Is(err, ErrSinkNotConfigured):
			report.DeliverySkipped++
			log.Info("sink not configured; skipping notification", "sink", n.Name())
		default:
			report.DeliveryFailed++
			log.Warn("notification failed", "sink", n.Name(), "error", err)
		}
	}
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:10]
}
