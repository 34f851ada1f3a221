package snipwatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/snipwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBackend(t *testing.T) {
	t.Parallel()

	settings := snipwatch.Settings{
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "llama3.1",
		GeminiAPIKey:   "g-key",
		OpenAIKey:      "o-key",
		OpenAIModel:    "gpt-4.1",
	}

	tests := []struct {
		name      string
		directive string
		model     string
		want      snipwatch.BackendSelection
	}{
		{
			name: "none",
			want: snipwatch.BackendSelection{Backend: snipwatch.BackendNone},
		},
		{
			name:      "none ignores model",
			directive: "none",
			model:     "whatever",
			want:      snipwatch.BackendSelection{Backend: snipwatch.BackendNone},
		},
		{
			name:      "ollama",
			directive: "ollama",
			want: snipwatch.BackendSelection{
				Backend: snipwatch.BackendOllama, Model: "llama3.1", Endpoint: "http://localhost:11434",
			},
		},
		{
			name:      "gemini default model",
			directive: "Gemini",
			want: snipwatch.BackendSelection{
				Backend: snipwatch.BackendGemini, Model: snipwatch.DefaultGeminiModel, APIKey: "g-key",
			},
		},
		{
			name:      "gemini override",
			directive: "gemini",
			model:     "gemini-2.5-pro",
			want: snipwatch.BackendSelection{
				Backend: snipwatch.BackendGemini, Model: "gemini-2.5-pro", APIKey: "g-key",
			},
		},
		{
			name:      "openai configured model",
			directive: "openai",
			want: snipwatch.BackendSelection{
				Backend: snipwatch.BackendOpenAI, Model: "gpt-4.1", APIKey: "o-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := snipwatch.ResolveBackend(tt.directive, tt.model, settings)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBackend_MissingCredential(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		directive string
		settings  snipwatch.Settings
	}{
		"gemini without key":      {"gemini", snipwatch.Settings{OpenAIKey: "o-key"}},
		"openai without key":      {"openai", snipwatch.Settings{GeminiAPIKey: "g-key"}},
		"ollama without endpoint": {"ollama", snipwatch.Settings{OllamaModel: "llama3.1"}},
		"ollama without model":    {"ollama", snipwatch.Settings{OllamaEndpoint: "http://localhost:11434"}},
		"unknown backend":         {"claude", snipwatch.Settings{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := snipwatch.ResolveBackend(tt.directive, "", tt.settings)

			var cfgErr *snipwatch.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestBackend_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Gemini", snipwatch.BackendGemini.Label())
	assert.Equal(t, "OpenAI", snipwatch.BackendOpenAI.Label())
	assert.Equal(t, "Ollama", snipwatch.BackendOllama.Label())
	assert.Empty(t, snipwatch.BackendNone.Label())
	assert.Equal(t, "gemini", snipwatch.BackendGemini.String())
}

func TestNopSummarizer(t *testing.T) {
	t.Parallel()

	summary, err := snipwatch.NopSummarizer{}.Summarize(context.Background(), "+x")

	require.NoError(t, err)
	assert.Empty(t, summary)
}
