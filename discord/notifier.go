// Package discord delivers change notifications to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/snipwatch"
)

// Embed size limits, in runes. Discord rejects a message whose embed
// exceeds any of them.
const (
	MaxTitleLength       = 256
	MaxDescriptionLength = 4096
	MaxFieldLength       = 1024
)

// Field budgets, including the truncation marker. The diff body also has to
// fit its code fence inside one field.
const (
	MaxSummaryLength = MaxFieldLength
	MaxDiffLength    = MaxFieldLength - len(diffFenceOpen) - len(diffFenceClose)
)

const (
	diffFenceOpen  = "```diff\n"
	diffFenceClose = "\n```"
)

// DefaultTimeout bounds one webhook delivery.
const DefaultTimeout = 10 * time.Second

// Compile-time interface verification.
var _ snipwatch.Notifier = (*Notifier)(nil)

// Notifier implements snipwatch.Notifier for Discord webhooks.
type Notifier struct {
	Client *http.Client
}

// NewNotifier creates a new Notifier with the default timeout.
func NewNotifier() *Notifier {
	return &Notifier{Client: &http.Client{Timeout: DefaultTimeout}}
}

// Name returns the sink name.
func (n *Notifier) Name() string { return "discord" }

// Configured reports whether a webhook URL is set.
func (n *Notifier) Configured(s snipwatch.Settings) bool {
	return strings.TrimSpace(s.WebhookURL) != ""
}

// Payload is the webhook request body.
type Payload struct {
	Content *string `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// Embed is one rich message block.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Field is one named section of an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// BuildPayload renders change as a single embed.
func BuildPayload(change snipwatch.Change) Payload {
	s := change.Snippet
	description := strings.Join([]string{
		"**File:** " + s.FileURL,
		"**Lines monitored:** " + s.LineRange(),
		"**Note:** " + change.NoteOrPlaceholder(),
		"**Changes:** " + change.StatsLine(),
	}, "\n")

	var fields []Field
	if summary := strings.TrimSpace(change.Summary); summary != "" {
		fields = append(fields, Field{
			Name:  change.SummaryLabel(),
			Value: snipwatch.Truncate(summary, MaxSummaryLength, snipwatch.Ellipsis),
		})
	}
	body := snipwatch.Truncate(change.DiffOrPlaceholder(), MaxDiffLength, "\n"+snipwatch.Ellipsis)
	fields = append(fields, Field{
		Name:  "Code change diff",
		Value: diffFenceOpen + body + diffFenceClose,
	})

	return Payload{
		Embeds: []Embed{{
			Title:       snipwatch.Truncate(change.Title(), MaxTitleLength, snipwatch.Ellipsis),
			Description: snipwatch.Truncate(description, MaxDescriptionLength, snipwatch.Ellipsis),
			Fields:      fields,
		}},
	}
}

// Notify posts change to the configured webhook.
func (n *Notifier) Notify(ctx context.Context, settings snipwatch.Settings, change snipwatch.Change) error {
	if !n.Configured(settings) {
		return snipwatch.ErrSinkNotConfigured
	}

	body, err := json.Marshal(BuildPayload(change))
	if err != nil {
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(settings.WebhookURL), bytes.NewReader(body))
	if err != nil {
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client().Do(req)
	if err != nil {
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &snipwatch.DeliveryError{
			Sink:       n.Name(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(text)),
		}
	}
	return nil
}

func (n *Notifier) client() *http.Client {
	if n.Client == nil {
		return http.DefaultClient
	}
	return n.Client
}
