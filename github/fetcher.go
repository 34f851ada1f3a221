// Package github fetches raw file content from GitHub.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/snipwatch"
)

// Compile-time interface verification.
var _ snipwatch.Fetcher = (*Fetcher)(nil)

// DefaultRawBaseURL serves raw file content.
const DefaultRawBaseURL = "https://raw.githubusercontent.com"

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// maxContentSize caps the size of a fetched file (8MB).
const maxContentSize = 8 << 20

// Fetcher retrieves raw file content over HTTP.
type Fetcher struct {
	BaseURL string       // Empty uses DefaultRawBaseURL
	Token   string       // Optional bearer credential
	Client  *http.Client // Nil uses a client with DefaultTimeout
}

// NewFetcher creates a new Fetcher that sends token, if set, as a bearer credential.
func NewFetcher(token string) *Fetcher {
	return &Fetcher{
		BaseURL: DefaultRawBaseURL,
		Token:   token,
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// RawURL builds the raw content URL for ref.
func (f *Fetcher) RawURL(ref snipwatch.Reference) string {
	base := f.BaseURL
	if base == "" {
		base = DefaultRawBaseURL
	}
	segments := strings.Split(ref.FilePath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimRight(base, "/"),
		url.PathEscape(ref.Owner),
		url.PathEscape(ref.Repo),
		url.PathEscape(ref.Branch),
		strings.Join(segments, "/"),
	)
}

// Fetch returns the full content of the referenced file. Failures are
// returned as *snipwatch.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, ref snipwatch.Reference) (string, error) {
	rawURL := f.RawURL(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &snipwatch.FetchError{URL: rawURL, Err: err}
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &snipwatch.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &snipwatch.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize))
	if err != nil {
		return "", &snipwatch.FetchError{URL: rawURL, Err: err}
	}
	return string(body), nil
}
