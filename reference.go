package snipwatch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBranch is used when a reference has no /blob/<branch> segment.
const DefaultBranch = "main"

// Reference is a parsed source reference. It is never persisted directly.
type Reference struct {
	Owner     string
	Repo      string
	Branch    string
	FilePath  string
	StartLine int
	EndLine   int
	URL       string // The reference as given, trimmed
}

// ID derives the stable snippet identifier from the reference location.
func (r Reference) ID() string {
	base := fmt.Sprintf("%s/%s/%s/%s#%s", r.Owner, r.Repo, r.Branch, r.FilePath, lineRange(r.StartLine, r.EndLine))
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])[:16]
}

// Snippet returns a new, unbaselined Snippet for the reference.
func (r Reference) Snippet(note string) Snippet {
	return Snippet{
		ID:        r.ID(),
		Owner:     r.Owner,
		Repo:      r.Repo,
		Branch:    r.Branch,
		FilePath:  r.FilePath,
		StartLine: r.StartLine,
		EndLine:   r.EndLine,
		FileURL:   r.URL,
		Note:      note,
	}
}

// lineFragment matches "L12", "L12-L20" and the loose "L12-20". Column
// suffixes as in "L12C3-L20C9" are accepted and ignored.
var lineFragment = regexp.MustCompile(`^L(\d+)(?:C\d+)?(?:-L?(\d+)(?:C\d+)?)?$`)

// ParseReference parses "<host>/<owner>/<repo>[/blob/<branch>]/<path...>#L<start>[-L<end>]".
// The scheme is optional. Failures are returned as *MalformedReferenceError.
func ParseReference(reference string) (Reference, error) {
	raw := strings.TrimSpace(reference)
	malformed := func(reason string) (Reference, error) {
		return Reference{}, &MalformedReferenceError{Reference: raw, Reason: reason}
	}

	target := raw
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return malformed(err.Error())
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return malformed("expected owner and repository in path")
	}

	ref := Reference{
		Owner:  parts[0],
		Repo:   parts[1],
		Branch: DefaultBranch,
		URL:    raw,
	}
	rest := parts[2:]
	if len(parts) >= 4 && parts[2] == "blob" {
		ref.Branch = parts[3]
		rest = parts[4:]
	}
	ref.FilePath = strings.Join(rest, "/")
	if ref.FilePath == "" {
		return malformed("no file path")
	}

	if u.Fragment == "" {
		return malformed("missing line fragment, e.g. #L26-L31")
	}
	m := lineFragment.FindStringSubmatch(u.Fragment)
	if m == nil {
		return malformed(fmt.Sprintf("invalid line fragment %q", u.Fragment))
	}
	ref.StartLine, _ = strconv.Atoi(m[1])
	ref.EndLine = ref.StartLine
	if m[2] != "" {
		ref.EndLine, _ = strconv.Atoi(m[2])
	}
	if ref.StartLine < 1 {
		return malformed("line numbers start at 1")
	}
	if ref.EndLine < ref.StartLine {
		return malformed("end line before start line")
	}

	return ref, nil
}

// SliceLines returns lines start..end (1-based, inclusive) of text joined by
// newlines. CRLF line endings are normalized and a single trailing newline
// does not count as an extra line.
func SliceLines(text string, start, end int) (string, error) {
	lines := splitLines(text)
	if start < 1 || end < start || end > len(lines) {
		return "", &RangeError{Start: start, End: end, LineCount: len(lines)}
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func lineRange(start, end int) string {
	return fmt.Sprintf("L%d-L%d", start, end)
}
