package snipwatch

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Interval defaults and floor, in seconds.
const (
	DefaultIntervalSeconds = 300
	MinIntervalSeconds     = 5
)

// Settings holds the global, non-snippet part of the configuration.
type Settings struct {
	WebhookURL       string `json:"webhook_url"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   ChatID `json:"telegram_chat_id"`
	IntervalSeconds  int    `json:"interval_seconds"`
	GitHubToken      string `json:"github_token,omitempty"`
	OllamaEndpoint   string `json:"ollama_endpoint"`
	OllamaModel      string `json:"ollama_model"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	GeminiModel      string `json:"gemini_model"`
	OpenAIKey        string `json:"openai_key"`
	OpenAIModel      string `json:"openai_model"`
}

// Interval returns the polling interval with the default and floor applied.
func (s Settings) Interval() time.Duration {
	secs := s.IntervalSeconds
	if secs <= 0 {
		secs = DefaultIntervalSeconds
	}
	return time.Duration(max(MinIntervalSeconds, secs)) * time.Second
}

// Config is the persisted record: settings plus the ordered snippet collection.
type Config struct {
	Settings
	Snippets []Snippet `json:"snippets"`
}

// DefaultConfig returns the configuration used when nothing is persisted yet.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{IntervalSeconds: DefaultIntervalSeconds},
		Snippets: []Snippet{},
	}
}

// FindByURL returns the snippet whose source reference equals url after trimming.
func (c *Config) FindByURL(url string) *Snippet {
	url = strings.TrimSpace(url)
	for i := range c.Snippets {
		if strings.TrimSpace(c.Snippets[i].FileURL) == url {
			return &c.Snippets[i]
		}
	}
	return nil
}

// FindByID returns the snippet with the given id.
func (c *Config) FindByID(id string) *Snippet {
	for i := range c.Snippets {
		if c.Snippets[i].ID == id {
			return &c.Snippets[i]
		}
	}
	return nil
}

// Add appends s unless a snippet with the same reference or id exists.
func (c *Config) Add(s Snippet) error {
	if existing := c.FindByURL(s.FileURL); existing != nil {
		return &DuplicateReferenceError{Reference: s.FileURL, ID: existing.ID}
	}
	if existing := c.FindByID(s.ID); existing != nil {
		return &DuplicateReferenceError{Reference: existing.FileURL, ID: existing.ID}
	}
	c.Snippets = append(c.Snippets, s)
	return nil
}

// RemoveByURL deletes every snippet whose reference equals url and reports
// whether anything was removed.
func (c *Config) RemoveByURL(url string) bool {
	url = strings.TrimSpace(url)
	kept := c.Snippets[:0]
	for _, s := range c.Snippets {
		if strings.TrimSpace(s.FileURL) != url {
			kept = append(kept, s)
		}
	}
	removed := len(kept) != len(c.Snippets)
	c.Snippets = kept
	return removed
}

// ChatID is a bot chat identifier. It decodes from a JSON string or number
// and always encodes as a string.
type ChatID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ChatID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ChatID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*id = ChatID(n.String())
	return nil
}
