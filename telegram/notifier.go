// Package telegram delivers change notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/snipwatch"
)

// DefaultBaseURL is the Bot API root.
const DefaultBaseURL = "https://api.telegram.org"

// Message size limits, in runes of escaped HTML. Telegram rejects messages
// above 4096.
const (
	MaxSummaryLength = 1200
	MaxDiffLength    = 1800
	MaxMessageLength = 3800
)

// Budgets for metadata that is normally short but comes from user input.
const (
	maxTitleLength = 300
	maxMetaLength  = 500
	maxLabelLength = 100
)

// DefaultTimeout bounds one sendMessage call.
const DefaultTimeout = 10 * time.Second

// Compile-time interface verification.
var _ snipwatch.Notifier = (*Notifier)(nil)

// Notifier implements snipwatch.Notifier using the sendMessage method.
type Notifier struct {
	BaseURL string
	Client  *http.Client
}

// NewNotifier creates a new Notifier against the public Bot API.
func NewNotifier() *Notifier {
	return &Notifier{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// Name returns the sink name.
func (n *Notifier) Name() string { return "telegram" }

// Configured reports whether both the bot token and the chat id are set.
func (n *Notifier) Configured(s snipwatch.Settings) bool {
	return strings.TrimSpace(s.TelegramBotToken) != "" && strings.TrimSpace(string(s.TelegramChatID)) != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// FormatMessage renders change as HTML message text. Every dynamic value is
// escaped within its own budget, so the assembled message never exceeds
// MaxMessageLength and is never cut inside markup or an entity.
func FormatMessage(change snipwatch.Change) string {
	s := change.Snippet
	parts := []string{
		"<b>" + escape(change.Title(), maxTitleLength) + "</b>",
		strings.Join([]string{
			"<b>File:</b> " + escape(s.FileURL, maxMetaLength),
			"<b>Lines monitored:</b> " + s.LineRange(),
			"<b>Note:</b> " + escape(change.NoteOrPlaceholder(), maxMetaLength),
			"<b>Changes:</b> " + change.StatsLine(),
		}, "\n"),
	}

	if summary := strings.TrimSpace(change.Summary); summary != "" {
		parts = append(parts, "<b>"+escape(change.SummaryLabel(), maxLabelLength)+":</b>\n"+escape(summary, MaxSummaryLength))
	}

	const (
		diffOpen  = "<b>Code change diff:</b>\n<pre><code>"
		diffClose = "</code></pre>"
	)
	head := strings.Join(parts, "\n\n") + "\n\n"
	budget := min(MaxDiffLength, MaxMessageLength-utf8.RuneCountInString(head+diffOpen+diffClose))
	body := escape(strings.TrimSpace(change.DiffOrPlaceholder()), budget)

	return head + diffOpen + body + diffClose
}

// escape HTML-escapes s. When the escaped text exceeds limit runes it is cut
// between escaped characters and ends with an ellipsis, within limit.
func escape(s string, limit int) string {
	escaped := html.EscapeString(s)
	if utf8.RuneCountInString(escaped) <= limit {
		return escaped
	}

	budget := limit - utf8.RuneCountInString(snipwatch.Ellipsis)
	var b strings.Builder
	n := 0
	for _, r := range s {
		e := html.EscapeString(string(r))
		w := utf8.RuneCountInString(e)
		if n+w > budget {
			break
		}
		b.WriteString(e)
		n += w
	}
	b.WriteString(snipwatch.Ellipsis)
	return b.String()
}

// Notify sends change to the configured chat.
func (n *Notifier) Notify(ctx context.Context, settings snipwatch.Settings, change snipwatch.Change) error {
	if !n.Configured(settings) {
		return snipwatch.ErrSinkNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                strings.TrimSpace(string(settings.TelegramChatID)),
		Text:                  FormatMessage(change),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: fmt.Errorf("encode request: %w", err)}
	}

	url := n.baseURL() + "/bot" + strings.TrimSpace(settings.TelegramBotToken) + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client().Do(req)
	if err != nil {
		// The request URL carries the bot token; keep it out of logs.
		return &snipwatch.DeliveryError{Sink: n.Name(), Err: redact(err, settings.TelegramBotToken)}
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

func (n *Notifier) baseURL() string {
	if n.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(n.BaseURL, "/")
}

func (n *Notifier) client() *http.Client {
	if n.Client == nil {
		return http.DefaultClient
	}
	return n.Client
}

func redact(err error, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
