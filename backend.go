package snipwatch

import (
	"context"
	"fmt"
	"strings"
)

// Backend identifies the summarizer backend for a run.
type Backend int

// Summarizer backends. Exactly one is active per run.
const (
	BackendNone Backend = iota
	BackendOllama
	BackendGemini
	BackendOpenAI
)

// Default cloud models used when neither the directive nor the config names one.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

func (b Backend) String() string {
	switch b {
	case BackendOllama:
		return "ollama"
	case BackendGemini:
		return "gemini"
	case BackendOpenAI:
		return "openai"
	default:
		return "none"
	}
}

// Label is the human-readable backend name shown next to summaries.
func (b Backend) Label() string {
	switch b {
	case BackendOllama:
		return "Ollama"
	case BackendGemini:
		return "Gemini"
	case BackendOpenAI:
		return "OpenAI"
	default:
		return ""
	}
}

// ParseBackend maps a directive ("", "none", "ollama", "gemini", "openai") to a Backend.
func ParseBackend(directive string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(directive)) {
	case "", "none":
		return BackendNone, nil
	case "ollama":
		return BackendOllama, nil
	case "gemini":
		return BackendGemini, nil
	case "openai":
		return BackendOpenAI, nil
	default:
		return BackendNone, &ConfigurationError{
			Reason: fmt.Sprintf("unknown summarizer backend %q (want gemini, openai or ollama)", directive),
		}
	}
}

// BackendSelection is the resolved summarizer configuration for a run.
type BackendSelection struct {
	Backend  Backend
	Model    string
	APIKey   string // Gemini and OpenAI
	Endpoint string // Ollama
}

// ResolveBackend selects the summarizer backend from the directive, an optional
// model override and the settings. A backend whose credential is absent is a
// *ConfigurationError; there is no fallback to another backend.
func ResolveBackend(directive, model string, s Settings) (BackendSelection, error) {
	backend, err := ParseBackend(directive)
	if err != nil {
		return BackendSelection{}, err
	}

	sel := BackendSelection{Backend: backend, Model: strings.TrimSpace(model)}
	switch backend {
	case BackendNone:
		sel.Model = ""
		return sel, nil
	case BackendOllama:
		sel.Endpoint = strings.TrimSpace(s.OllamaEndpoint)
		if sel.Endpoint == "" {
			return BackendSelection{}, &ConfigurationError{Reason: "ollama selected but ollama_endpoint is missing"}
		}
		if sel.Model == "" {
			sel.Model = strings.TrimSpace(s.OllamaModel)
		}
		if sel.Model == "" {
			return BackendSelection{}, &ConfigurationError{Reason: "ollama selected but no model is configured"}
		}
	case BackendGemini:
		sel.APIKey = strings.TrimSpace(s.GeminiAPIKey)
		if sel.APIKey == "" {
			return BackendSelection{}, &ConfigurationError{Reason: "gemini selected but gemini_api_key is missing"}
		}
		sel.Model = firstNonEmpty(sel.Model, strings.TrimSpace(s.GeminiModel), DefaultGeminiModel)
	case BackendOpenAI:
		sel.APIKey = strings.TrimSpace(s.OpenAIKey)
		if sel.APIKey == "" {
			return BackendSelection{}, &ConfigurationError{Reason: "openai selected but openai_key is missing"}
		}
		sel.Model = firstNonEmpty(sel.Model, strings.TrimSpace(s.OpenAIModel), DefaultOpenAIModel)
	}
	return sel, nil
}

// NopSummarizer is the disabled backend. It never produces a summary.
type NopSummarizer struct{}

// Summarize returns an empty summary.
func (NopSummarizer) Summarize(ctx context.Context, diff string) (string, error) {
	return "", nil
}

// Name returns an empty label.
func (NopSummarizer) Name() string { return "" }

var _ Summarizer = NopSummarizer{}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
