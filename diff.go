package snipwatch

import (
	"fmt"
	"strings"
)

// Diff is the line diff between two versions of a snippet.
type Diff struct {
	Hunks []Hunk
}

// Hunk represents a contiguous block of changes.
type Hunk struct {
	OldStart int // From @@ -X,...
	OldCount int // From @@ -X,Y ...
	NewStart int // From @@ ...,+X
	NewCount int // From @@ ...,+X,Y
	Lines    []Line
}

// Header renders the hunk header the way unified diffs do, omitting a count of one.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldCount), hunkRange(h.NewStart, h.NewCount))
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Line represents a single line within a hunk, without its trailing newline.
type Line struct {
	Type    LineType
	Content string
}

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// Stats returns the number of added and deleted lines.
func (d *Diff) Stats() (added, deleted int) {
	for _, hunk := range d.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineAdded:
				added++
			case LineDeleted:
				deleted++
			}
		}
	}
	return added, deleted
}

// Body renders the notification diff body: hunk headers and changed lines
// only, context dropped, trimmed of surrounding whitespace.
func (d *Diff) Body() string {
	var lines []string
	for _, hunk := range d.Hunks {
		lines = append(lines, hunk.Header())
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineAdded:
				lines = append(lines, "+"+line.Content)
			case LineDeleted:
				lines = append(lines, "-"+line.Content)
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
