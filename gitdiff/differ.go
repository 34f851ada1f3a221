// Package gitdiff computes snippet diffs using aymanbagabas/go-udiff and
// parses them into hunks using bluekeyes/go-gitdiff.
package gitdiff

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Differ = (*Differ)(nil)

// Patch labels. They never reach the rendered body.
const (
	oldLabel = "last_snippet"
	newLabel = "new_snippet"
)

// Differ computes line diffs between snippet versions.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff returns the hunks that turn oldText into newText. Identical inputs
// yield a diff with no hunks.
func (d *Differ) Diff(oldText, newText string) (*snipwatch.Diff, error) {
	patch := Unified(oldText, newText)
	if patch == "" {
		return &snipwatch.Diff{}, nil
	}
	return Parse(patch)
}

// Unified returns the unified patch between two snippet texts. Both texts are
// newline-terminated first so the patch carries no end-of-file markers.
func Unified(oldText, newText string) string {
	return udiff.Unified(oldLabel, newLabel, terminate(oldText), terminate(newText))
}

// Parse converts a single-file unified patch into a snipwatch.Diff.
func Parse(patch string) (*snipwatch.Diff, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	result := &snipwatch.Diff{}
	for _, f := range files {
		for _, frag := range f.TextFragments {
			result.Hunks = append(result.Hunks, convertFragment(frag))
		}
	}
	return result, nil
}

func convertFragment(frag *gitdiff.TextFragment) snipwatch.Hunk {
	hunk := snipwatch.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
	}

	for _, l := range frag.Lines {
		line := snipwatch.Line{Content: strings.TrimSuffix(l.Line, "\n")}
		switch l.Op {
		case gitdiff.OpContext:
			line.Type = snipwatch.LineContext
		case gitdiff.OpAdd:
			line.Type = snipwatch.LineAdded
		case gitdiff.OpDelete:
			line.Type = snipwatch.LineDeleted
		}
		hunk.Lines = append(hunk.Lines, line)
	}

	return hunk
}

func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
