package snipwatch

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated notification text.
const Ellipsis = "…"

// NotePlaceholder is shown when a snippet carries no note.
const NotePlaceholder = "—"

// Title renders the notification title for a change.
func (c Change) Title() string {
	return "Code change detected in " + c.Snippet.RepoName()
}

// NoteOrPlaceholder returns the snippet note or NotePlaceholder when blank.
func (c Change) NoteOrPlaceholder() string {
	if strings.TrimSpace(c.Snippet.Note) == "" {
		return NotePlaceholder
	}
	return c.Snippet.Note
}

// SummaryLabel returns "Diff summary" qualified with the source when known.
func (c Change) SummaryLabel() string {
	if c.SummarySource == "" {
		return "Diff summary"
	}
	return fmt.Sprintf("Diff summary (%s)", c.SummarySource)
}

// StatsLine renders the change size, e.g. "+2 -1".
func (c Change) StatsLine() string {
	return fmt.Sprintf("+%d -%d", c.Added, c.Removed)
}

// DiffOrPlaceholder returns the diff body or a placeholder when empty.
func (c Change) DiffOrPlaceholder() string {
	if c.Diff == "" {
		return "No diff text available"
	}
	return c.Diff
}

// Truncate shortens s to at most limit runes, replacing the tail with marker.
// The marker counts toward the limit.
func Truncate(s string, limit int, marker string) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(marker)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return string(runes[:keep]) + marker
}
