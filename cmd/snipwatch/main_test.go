package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/snipwatch"
	main "github.com/fwojciec/snipwatch/cmd/snipwatch"
	"github.com/fwojciec/snipwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRef = "https://github.com/acme/api/blob/main/server.go#L2-L3"

// memStore keeps the configuration in memory and records saves.
type memStore struct {
	cfg   *snipwatch.Config
	saves int
}

func (s *memStore) store() *mock.ConfigStore {
	return &mock.ConfigStore{
		LoadFn: func() (*snipwatch.Config, error) {
			cp := *s.cfg
			cp.Snippets = append([]snipwatch.Snippet{}, s.cfg.Snippets...)
			return &cp, nil
		},
		SaveFn: func(cfg *snipwatch.Config) error {
			s.saves++
			s.cfg = cfg
			return nil
		},
	}
}

type harness struct {
	app     *main.App
	stdout  *bytes.Buffer
	store   *memStore
	env     map[string]string
	paths   []string
	tokens  []string
	fetches int
}

func newHarness(cfg *snipwatch.Config) *harness {
	h := &harness{
		stdout: &bytes.Buffer{},
		store:  &memStore{cfg: cfg},
		env:    map[string]string{},
	}
	h.app = &main.App{
		Stdout: h.stdout,
		Stderr: &bytes.Buffer{},
		Getenv: func(k string) string { return h.env[k] },
		OpenStore: func(path string) snipwatch.ConfigStore {
			h.paths = append(h.paths, path)
			return h.store.store()
		},
		NewFetcher: func(token string) snipwatch.Fetcher {
			h.tokens = append(h.tokens, token)
			return &mock.Fetcher{
				FetchFn: func(_ context.Context, _ snipwatch.Reference) (string, error) {
					h.fetches++
					return "one\ntwo\nthree\n", nil
				},
			}
		},
		Differ: &mock.Differ{
			DiffFn: func(_, _ string) (*snipwatch.Diff, error) { return &snipwatch.Diff{}, nil },
		},
		Notifiers: []snipwatch.Notifier{&mock.Notifier{
			NameValue:    "test",
			ConfiguredFn: func(s snipwatch.Settings) bool { return s.WebhookURL != "" },
			NotifyFn: func(_ context.Context, _ snipwatch.Settings, _ snipwatch.Change) error {
				return nil
			},
		}},
		NewSummarizer: func(_ context.Context, _ snipwatch.BackendSelection) (snipwatch.Summarizer, error) {
			return snipwatch.NopSummarizer{}, nil
		},
	}
	return h
}

func TestApp_Run_MissingBackendCredentialPreventsStart(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	cfg.WebhookURL = "https://discord.example/webhook"
	cfg.Snippets = []snipwatch.Snippet{{FileURL: testRef, LastSeenCode: "two\nthree"}}
	h := newHarness(cfg)
	summarizerBuilt := false
	h.app.NewSummarizer = func(_ context.Context, _ snipwatch.BackendSelection) (snipwatch.Summarizer, error) {
		summarizerBuilt = true
		return snipwatch.NopSummarizer{}, nil
	}

	err := h.app.Run(context.Background(), []string{"run", "--ai", "gemini"})

	var cfgErr *snipwatch.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Zero(t, h.fetches)
	assert.False(t, summarizerBuilt)
	assert.Zero(t, h.store.saves)
}

func TestApp_Run_NoSinkPreventsStart(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())

	err := h.app.Run(context.Background(), []string{"run"})

	var cfgErr *snipwatch.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestApp_Check_UsesEnvironmentKeyWithoutSavingIt(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())
	h.env["GEMINI_API_KEY"] = "env-key"
	var got snipwatch.BackendSelection
	h.app.NewSummarizer = func(_ context.Context, sel snipwatch.BackendSelection) (snipwatch.Summarizer, error) {
		got = sel
		return snipwatch.NopSummarizer{}, nil
	}

	err := h.app.Run(context.Background(), []string{"check", "--ai", "gemini", "--model", "gemini-x"})

	require.NoError(t, err)
	assert.Equal(t, snipwatch.BackendGemini, got.Backend)
	assert.Equal(t, "env-key", got.APIKey)
	assert.Equal(t, "gemini-x", got.Model)
	assert.Empty(t, h.store.cfg.GeminiAPIKey)
	assert.Contains(t, h.stdout.String(), "cycle skipped: nothing to monitor")
}

func TestApp_Check_PrintsReport(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	cfg.Snippets = []snipwatch.Snippet{{FileURL: testRef}}
	h := newHarness(cfg)

	err := h.app.Run(context.Background(), []string{"check"})

	require.NoError(t, err)
	assert.Contains(t, h.stdout.String(), "checked 1: 1 baselined")
	assert.Equal(t, "two\nthree", h.store.cfg.Snippets[0].LastSeenCode)
}

func TestApp_Add_StoresBaseline(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())
	h.env["GITHUB_TOKEN"] = "ghp_test"

	err := h.app.Run(context.Background(), []string{"add", testRef, "--note", "timeouts"})

	require.NoError(t, err)
	require.Len(t, h.store.cfg.Snippets, 1)
	s := h.store.cfg.Snippets[0]
	assert.Equal(t, "two\nthree", s.OriginalCode)
	assert.Equal(t, "two\nthree", s.LastSeenCode)
	assert.Equal(t, "timeouts", s.Note)
	assert.Equal(t, []string{"ghp_test"}, h.tokens)
	assert.Empty(t, h.store.cfg.GitHubToken)
	assert.Contains(t, h.stdout.String(), "added "+s.ID)
}

func TestApp_Add_ReportsEveryFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())

	err := h.app.Run(context.Background(), []string{"add", "https://github.com/acme/api/blob/main/a.go", testRef})

	var malformed *snipwatch.MalformedReferenceError
	require.True(t, errors.As(err, &malformed))
	assert.Len(t, h.store.cfg.Snippets, 1)
}

func TestApp_Remove(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	cfg.Snippets = []snipwatch.Snippet{{FileURL: testRef}}
	h := newHarness(cfg)

	err := h.app.Run(context.Background(), []string{"remove", "https://github.com/other/x/blob/main/a.go#L1"})
	assert.ErrorIs(t, err, main.ErrSnippetNotFound)

	err = h.app.Run(context.Background(), []string{"remove", testRef})
	require.NoError(t, err)
	assert.Empty(t, h.store.cfg.Snippets)
}

func TestApp_Interval(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())

	require.Error(t, h.app.Run(context.Background(), []string{"interval", "0"}))
	require.Error(t, h.app.Run(context.Background(), []string{"interval", "soon"}))
	assert.Zero(t, h.store.saves)

	require.NoError(t, h.app.Run(context.Background(), []string{"interval", "60"}))
	assert.Equal(t, 60, h.store.cfg.IntervalSeconds)
	assert.Contains(t, h.stdout.String(), "interval set to 1m0s")
}

func TestApp_List(t *testing.T) {
	t.Parallel()

	cfg := snipwatch.DefaultConfig()
	cfg.Snippets = []snipwatch.Snippet{{
		ID: "abc123", Owner: "acme", Repo: "api", Branch: "main", FilePath: "server.go",
		StartLine: 2, EndLine: 3, Note: "timeouts",
	}}
	h := newHarness(cfg)

	require.NoError(t, h.app.Run(context.Background(), []string{"list"}))

	out := h.stdout.String()
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "acme/api")
	assert.Contains(t, out, "server.go@main")
	assert.Contains(t, out, "L2-L3")
}

func TestApp_ConfigPath(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())
	require.NoError(t, h.app.Run(context.Background(), []string{"list"}))
	h.env[main.ConfigEnv] = "/tmp/env.json"
	require.NoError(t, h.app.Run(context.Background(), []string{"list"}))
	require.NoError(t, h.app.Run(context.Background(), []string{"list", "--config", "/tmp/flag.json"}))

	assert.Equal(t, []string{"config.json", "/tmp/env.json", "/tmp/flag.json"}, h.paths)
}

func TestApp_Run_Usage(t *testing.T) {
	t.Parallel()

	h := newHarness(snipwatch.DefaultConfig())

	assert.ErrorIs(t, h.app.Run(context.Background(), nil), main.ErrUsage)
	assert.ErrorIs(t, h.app.Run(context.Background(), []string{"frobnicate"}), main.ErrUsage)
	assert.ErrorIs(t, h.app.Run(context.Background(), []string{"remove"}), main.ErrUsage)
}
