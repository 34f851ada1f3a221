package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fwojciec/snipwatch"
	"github.com/fwojciec/snipwatch/discord"
	"github.com/fwojciec/snipwatch/gemini"
	"github.com/fwojciec/snipwatch/github"
	"github.com/fwojciec/snipwatch/gitdiff"
	"github.com/fwojciec/snipwatch/jsonfile"
	"github.com/fwojciec/snipwatch/ollama"
	"github.com/fwojciec/snipwatch/openai"
	"github.com/fwojciec/snipwatch/telegram"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("usage: snipwatch <add|remove|list|interval|check|run> [flags]")

// ErrSnippetNotFound is returned by remove when nothing matches the reference.
var ErrSnippetNotFound = errors.New("snippet not found")

// ConfigEnv names the environment variable that overrides the config path.
const ConfigEnv = "SNIPWATCH_CONFIG"

// SummarizerFactory builds the summarizer for a resolved backend.
type SummarizerFactory func(ctx context.Context, sel snipwatch.BackendSelection) (snipwatch.Summarizer, error)

// App encapsulates the application logic for testing.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	OpenStore     func(path string) snipwatch.ConfigStore
	NewFetcher    func(token string) snipwatch.Fetcher
	Differ        snipwatch.Differ
	Notifiers     []snipwatch.Notifier
	NewSummarizer SummarizerFactory
	Waiter        snipwatch.Waiter // Nil uses a real timer
}

// options are the flags shared by every command.
type options struct {
	config string
	debug  bool
	note   string
	ai     string
	model  string
}

// Run dispatches args (without the program name) to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	command, rest := args[0], args[1:]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts options
	fs.StringVar(&opts.config, "config", "", "Path to the config file (default $"+ConfigEnv+" or "+jsonfile.DefaultPath+")")
	fs.BoolVar(&opts.debug, "debug", false, "Log content hashes and other debug details")
	switch command {
	case "add":
		fs.StringVar(&opts.note, "note", "", "Why the snippet matters")
	case "check", "run":
		fs.StringVar(&opts.ai, "ai", "", "Summarizer backend: gemini, openai or ollama")
		fs.StringVar(&opts.model, "model", "", "Override the configured summarizer model")
	case "remove", "list", "interval":
	default:
		return fmt.Errorf("unknown command %q: %w", command, ErrUsage)
	}
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	logger := a.logger(opts.debug)
	store := a.OpenStore(a.configPath(opts.config))

	switch command {
	case "add":
		return a.add(ctx, logger, store, fs.Args(), opts.note)
	case "remove":
		return a.remove(logger, store, fs.Args())
	case "list":
		return a.list(store)
	case "interval":
		return a.interval(store, fs.Args())
	case "check":
		return a.check(ctx, logger, store, opts)
	default:
		return a.run(ctx, logger, store, opts)
	}
}

func (a *App) add(ctx context.Context, logger *slog.Logger, store snipwatch.ConfigStore, refs []string, note string) error {
	if len(refs) == 0 {
		return fmt.Errorf("add: at least one reference required: %w", ErrUsage)
	}
	m, err := a.monitor(logger, store)
	if err != nil {
		return err
	}

	var errs []error
	for _, ref := range refs {
		snippet, err := m.Add(ctx, ref, note)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(a.Stdout, "added %s %s (%s)\n", snippet.ID, snippet.FileURL, snippet.LineRange())
	}
	return errors.Join(errs...)
}

func (a *App) remove(logger *slog.Logger, store snipwatch.ConfigStore, refs []string) error {
	if len(refs) != 1 {
		return fmt.Errorf("remove: exactly one reference required: %w", ErrUsage)
	}
	m := &snipwatch.Monitor{Store: store, Logger: logger}
	removed, err := m.Remove(refs[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrSnippetNotFound, refs[0])
	}
	fmt.Fprintf(a.Stdout, "removed %s\n", refs[0])
	return nil
}

func (a *App) list(store snipwatch.ConfigStore) error {
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	if len(cfg.Snippets) == 0 {
		fmt.Fprintln(a.Stdout, "no snippets monitored")
		return nil
	}
	w := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPO\tFILE\tLINES\tNOTE")
	for i := range cfg.Snippets {
		s := &cfg.Snippets[i]
		fmt.Fprintf(w, "%s\t%s\t%s@%s\t%s\t%s\n", s.ID, s.RepoName(), s.FilePath, s.Branch, s.LineRange(), s.Note)
	}
	return w.Flush()
}

func (a *App) interval(store snipwatch.ConfigStore, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("interval: seconds required: %w", ErrUsage)
	}
	secs, err := strconv.Atoi(args[0])
	if err != nil || secs <= 0 {
		return fmt.Errorf("interval: %q is not a positive number of seconds", args[0])
	}
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	cfg.IntervalSeconds = secs
	if err := store.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "interval set to %s\n", cfg.Interval())
	return nil
}

func (a *App) check(ctx context.Context, logger *slog.Logger, store snipwatch.ConfigStore, opts options) error {
	m, err := a.monitorWithSummarizer(ctx, logger, store, opts)
	if err != nil {
		return err
	}
	report, err := m.RunCycleOnce(ctx)
	if err != nil {
		return err
	}
	a.printReport(report)
	return nil
}

func (a *App) run(ctx context.Context, logger *slog.Logger, store snipwatch.ConfigStore, opts options) error {
	m, err := a.monitorWithSummarizer(ctx, logger, store, opts)
	if err != nil {
		return err
	}
	return m.Run(ctx)
}

// monitor builds a Monitor from the stored settings with environment
// fallbacks applied. The fallbacks are never saved.
func (a *App) monitor(logger *slog.Logger, store snipwatch.ConfigStore) (*snipwatch.Monitor, error) {
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	settings := a.withEnv(cfg.Settings)
	return &snipwatch.Monitor{
		Store:     store,
		Fetcher:   a.NewFetcher(settings.GitHubToken),
		Differ:    a.Differ,
		Notifiers: a.Notifiers,
		Waiter:    a.Waiter,
		Logger:    logger,
	}, nil
}

// monitorWithSummarizer resolves the summarizer backend once for the process.
func (a *App) monitorWithSummarizer(ctx context.Context, logger *slog.Logger, store snipwatch.ConfigStore, opts options) (*snipwatch.Monitor, error) {
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	sel, err := snipwatch.ResolveBackend(opts.ai, opts.model, a.withEnv(cfg.Settings))
	if err != nil {
		return nil, err
	}
	m, err := a.monitor(logger, store)
	if err != nil {
		return nil, err
	}
	if sel.Backend != snipwatch.BackendNone {
		summarizer, err := a.NewSummarizer(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("create %s summarizer: %w", sel.Backend, err)
		}
		m.Summarizer = summarizer
		logger.Info("summaries enabled", "backend", sel.Backend.Label(), "model", sel.Model)
	}
	return m, nil
}

func (a *App) withEnv(s snipwatch.Settings) snipwatch.Settings {
	getenv := a.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if s.GeminiAPIKey == "" {
		s.GeminiAPIKey = getenv("GEMINI_API_KEY")
	}
	if s.OpenAIKey == "" {
		s.OpenAIKey = getenv("OPENAI_API_KEY")
	}
	if s.GitHubToken == "" {
		s.GitHubToken = getenv("GITHUB_TOKEN")
	}
	return s
}

func (a *App) configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	getenv := a.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if p := strings.TrimSpace(getenv(ConfigEnv)); p != "" {
		return p
	}
	return jsonfile.DefaultPath
}

func (a *App) logger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level}))
}

func (a *App) printReport(r *snipwatch.CycleReport) {
	if r.Skipped != "" {
		fmt.Fprintf(a.Stdout, "cycle skipped: %s\n", r.Skipped)
		return
	}
	fmt.Fprintf(a.Stdout, "checked %d: %d baselined, %d changed, %d unchanged, %d failed\n",
		r.Checked, r.Baselined, r.Changed, r.Unchanged, r.Failed)
	fmt.Fprintf(a.Stdout, "notifications: %d delivered, %d skipped, %d failed\n",
		r.Delivered, r.DeliverySkipped, r.DeliveryFailed)
	for _, e := range r.Errors {
		fmt.Fprintf(a.Stdout, "error: %v\n", e)
	}
}

// newSummarizer builds the production summarizer for sel.
func newSummarizer(ctx context.Context, sel snipwatch.BackendSelection) (snipwatch.Summarizer, error) {
	switch sel.Backend {
	case snipwatch.BackendGemini:
		client, err := gemini.NewClient(ctx, sel.APIKey)
		if err != nil {
			return nil, err
		}
		return gemini.NewSummarizer(client, sel.Model), nil
	case snipwatch.BackendOpenAI:
		chatModel, err := openai.NewChatModel(ctx, sel.APIKey, sel.Model, "")
		if err != nil {
			return nil, err
		}
		return openai.NewSummarizer(chatModel), nil
	case snipwatch.BackendOllama:
		chatModel, err := ollama.NewChatModel(ctx, sel.Endpoint, sel.Model)
		if err != nil {
			return nil, err
		}
		return ollama.NewSummarizer(chatModel), nil
	default:
		return snipwatch.NopSummarizer{}, nil
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		OpenStore: func(path string) snipwatch.ConfigStore {
			return jsonfile.NewStore(path)
		},
		NewFetcher: func(token string) snipwatch.Fetcher {
			return github.NewFetcher(token)
		},
		Differ:        gitdiff.NewDiffer(),
		Notifiers:     []snipwatch.Notifier{discord.NewNotifier(), telegram.NewNotifier()},
		NewSummarizer: newSummarizer,
	}
	return app.Run(ctx, os.Args[1:])
}
