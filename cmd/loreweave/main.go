// Command loreweave runs the NPC dialogue server: an interactive console for
// talking to world NPCs, backed by graph and semantic retrieval over static
// world data, with a live pipeline trace viewer and health/metrics endpoints
// served over HTTP.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fennwald/loreweave/internal/config"
	"github.com/fennwald/loreweave/internal/dialogue"
	"github.com/fennwald/loreweave/internal/health"
	"github.com/fennwald/loreweave/internal/npc"
	"github.com/fennwald/loreweave/internal/observe"
	"github.com/fennwald/loreweave/internal/resilience"
	"github.com/fennwald/loreweave/internal/trace"
	"github.com/fennwald/loreweave/internal/world"
	"github.com/fennwald/loreweave/pkg/provider/embeddings"
	ollamaemb "github.com/fennwald/loreweave/pkg/provider/embeddings/ollama"
	openaiemb "github.com/fennwald/loreweave/pkg/provider/embeddings/openai"
	"github.com/fennwald/loreweave/pkg/provider/llm"
	"github.com/fennwald/loreweave/pkg/provider/llm/anyllm"
	"github.com/fennwald/loreweave/pkg/provider/llm/lmstudio"
	"github.com/fennwald/loreweave/pkg/semindex"
	semindexpg "github.com/fennwald/loreweave/pkg/semindex/postgres"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// ── Flags ──────────────────────────────────────────────────────────────
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML configuration file")
		npcName    = flag.String("npc", "", "name of the NPC to talk to (default: first configured NPC)")
		traceOn    = flag.Bool("trace", false, "enable pipeline trace recording even if the config disables it")
		traceDir   = flag.String("trace-dir", "", "override the trace output directory")
		reindex    = flag.Bool("reindex", false, "re-embed all world facts into the semantic index and exit")
	)
	flag.Parse()

	// ── Configuration ──────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Config file %q not found.\n", *configPath)
			fmt.Fprintf(os.Stderr, "Copy configs/example.yaml to %s and edit it to get started.\n", *configPath)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// ── Telemetry ──────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "loreweave",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "error", err)
		return 1
	}
	defer func() {
		sdCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(sdCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// ── World data ─────────────────────────────────────────────────────────
	entities, err := world.LoadEntities(cfg.World.EntitiesPath)
	if err != nil {
		slog.Error("failed to load entities", "error", err)
		return 1
	}

	var edges []world.Edge
	if cfg.World.EdgesPath != "" {
		edges, err = world.LoadEdges(cfg.World.EdgesPath)
		if err != nil {
			slog.Error("failed to load edges", "error", err)
			return 1
		}
	}

	factEntities, facts, err := world.LoadFacts(cfg.World.FactsPath)
	if err != nil {
		slog.Error("failed to load facts", "error", err)
		return 1
	}
	entities = append(entities, factEntities...)

	graph := world.NewGraph(entities, edges)

	// ── Semantic index ─────────────────────────────────────────────────────
	var (
		index   semindex.Index
		pgIndex *semindexpg.Index
	)
	if cfg.Index.PostgresDSN != "" {
		embedder, err := buildEmbedder(cfg.Embeddings)
		if err != nil {
			slog.Error("failed to build embeddings provider", "error", err)
			return 1
		}
		pgIndex, err = semindexpg.New(ctx, cfg.Index.PostgresDSN, embedder)
		if err != nil {
			slog.Error("failed to connect semantic index", "error", err)
			return 1
		}
		defer pgIndex.Close()
		index = pgIndex
	} else {
		slog.Warn("no postgres_dsn configured, semantic search disabled")
	}

	store := world.NewFactStore(entities, facts, index)

	if *reindex {
		if index == nil {
			slog.Error("cannot reindex without a configured semantic index")
			return 1
		}
		slog.Info("reindexing world facts", "facts", len(facts))
		if err := store.IndexAll(ctx); err != nil {
			slog.Error("reindex failed", "error", err)
			return 1
		}
		slog.Info("reindex complete")
		return 0
	}

	// ── Generation backend ─────────────────────────────────────────────────
	gen, err := buildGenerator(cfg.LLM)
	if err != nil {
		slog.Error("failed to build generation backend", "error", err)
		return 1
	}

	// ── Trace recorder ─────────────────────────────────────────────────────
	recorder := &trace.Recorder{}
	if cfg.Trace.Enabled || *traceOn {
		dir := cfg.Trace.OutputDir
		if *traceDir != "" {
			dir = *traceDir
		}
		recorder, err = trace.NewRecorder(dir)
		if err != nil {
			slog.Error("failed to create trace recorder", "error", err)
			return 1
		}
		defer recorder.Close()
	}

	// ── HTTP server: trace viewer, health, metrics ─────────────────────────
	checkers := []health.Checker{
		{Name: "world_data", Check: func(context.Context) error {
			if graph.Len() == 0 {
				return errors.New("no entities loaded")
			}
			return nil
		}},
	}
	if pgIndex != nil {
		checkers = append(checkers, health.Checker{Name: "semindex", Check: pgIndex.Ping})
	}

	mux := http.NewServeMux()
	mux.Handle("/", trace.Handler(recorder))
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(checkers...).Register(mux)

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           observe.Middleware(observe.DefaultMetrics())(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}()
	defer func() {
		sdCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sdCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
	}()

	// ── NPC selection ──────────────────────────────────────────────────────
	character, err := selectNPC(cfg.NPCs, *npcName)
	if err != nil {
		slog.Error("failed to select NPC", "error", err)
		return 1
	}

	printStartupSummary(cfg, character, recorder.Enabled(), index != nil, graph.Len(), len(facts))

	// ── Dialogue loop ──────────────────────────────────────────────────────
	pipeline := dialogue.New(gen, graph, store, recorder, nil)
	if err := repl(ctx, pipeline, character); err != nil {
		slog.Error("dialogue loop failed", "error", err)
		return 1
	}

	slog.Info("shutting down")
	return 0
}

// repl reads user turns from stdin and runs each through the pipeline until
// the user quits, stdin closes, or ctx is cancelled.
func repl(ctx context.Context, pipeline *dialogue.Pipeline, character npc.NPC) error {
	fmt.Printf("Talking to %s. Type 'quit' to leave, 'clear' to reset the conversation.\n\n", character.Name)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	var history string
	for {
		fmt.Print("> ")
		var input string
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
				default:
				}
				fmt.Println()
				return nil
			}
			input = strings.TrimSpace(line)
		}

		switch {
		case input == "":
			continue
		case input == "quit" || input == "exit":
			fmt.Printf("%s nods farewell.\n", character.Name)
			return nil
		case input == "clear":
			history = ""
			fmt.Println("(conversation cleared)")
			continue
		}

		state := &dialogue.State{
			NPC:                 character,
			UserInput:           input,
			ConversationHistory: history,
		}
		result, err := pipeline.Execute(ctx, state)
		if err != nil {
			slog.Error("turn failed", "error", err)
			fmt.Printf("%s looks confused and says nothing. (%v)\n", character.Name, err)
			continue
		}

		fmt.Printf("%s: %s\n", character.Name, result.FormattedResponse)
		if history != "" {
			history += "\n"
		}
		history += fmt.Sprintf("Human: %s\n%s: %s", input, character.Name, result.FormattedResponse)
	}
}

// selectNPC picks the NPC to talk to: by name when given, the first configured
// NPC otherwise.
func selectNPC(npcs []npc.NPC, name string) (npc.NPC, error) {
	if len(npcs) == 0 {
		return npc.NPC{}, errors.New("no NPCs configured")
	}
	if name == "" {
		return npcs[0], nil
	}
	for _, n := range npcs {
		if strings.EqualFold(n.Name, name) {
			return n, nil
		}
	}
	return npc.NPC{}, fmt.Errorf("no NPC named %q in config", name)
}

// buildGenerator constructs the generative backend selected by the config,
// chaining configured fallbacks behind per-backend circuit breakers.
func buildGenerator(cfg config.LLMConfig) (llm.Generator, error) {
	primary, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}
	if len(cfg.Fallback) == 0 {
		return primary, nil
	}

	fg := resilience.NewFallbackGenerator(backendName(cfg), primary, resilience.BreakerConfig{})
	for _, fb := range cfg.Fallback {
		gen, err := buildBackend(fb)
		if err != nil {
			return nil, err
		}
		fg.AddFallback(backendName(fb), gen)
	}
	return fg, nil
}

// backendName labels a backend in breaker logs, "anyllm/openai" or "lmstudio".
func backendName(cfg config.LLMConfig) string {
	if cfg.Backend == "anyllm" {
		return cfg.Backend + "/" + cfg.Provider
	}
	return cfg.Backend
}

// buildBackend constructs one generation backend.
func buildBackend(cfg config.LLMConfig) (llm.Generator, error) {
	switch cfg.Backend {
	case "anyllm":
		var opts []anyllmlib.Option
		if cfg.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New(cfg.Provider, cfg.Model, opts...)
	case "lmstudio":
		var opts []lmstudio.Option
		if cfg.BaseURL != "" {
			opts = append(opts, lmstudio.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, lmstudio.WithTimeout(cfg.Timeout))
		}
		return lmstudio.New(cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown llm backend %q (expected anyllm or lmstudio)", cfg.Backend)
	}
}

// buildEmbedder constructs the embeddings provider backing the semantic index.
func buildEmbedder(cfg config.ProviderEntry) (embeddings.Provider, error) {
	switch cfg.Name {
	case "openai":
		var opts []openaiemb.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openaiemb.WithBaseURL(cfg.BaseURL))
		}
		return openaiemb.New(cfg.APIKey, cfg.Model, opts...)
	case "ollama":
		return ollamaemb.New(cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q (expected openai or ollama)", cfg.Name)
	}
}

// newLogger builds a text slog.Logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case config.LogDebug:
		slogLevel = slog.LevelDebug
	case config.LogWarn:
		slogLevel = slog.LevelWarn
	case config.LogError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}

// printStartupSummary prints a human-readable box describing the running
// configuration.
func printStartupSummary(cfg *config.Config, character npc.NPC, tracing, semantic bool, entityCount, factCount int) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	backend := cfg.LLM.Backend
	if backend == "anyllm" {
		backend = fmt.Sprintf("anyllm/%s", cfg.LLM.Provider)
	}

	fmt.Println("┌──────────────────────────────────────────────┐")
	fmt.Println("│              loreweave dialogue              │")
	fmt.Println("├──────────────────────────────────────────────┤")
	fmt.Printf("│ version   %-34s │\n", version)
	fmt.Printf("│ npc       %-34s │\n", character.Name)
	fmt.Printf("│ llm       %-34s │\n", fmt.Sprintf("%s (%s)", backend, cfg.LLM.Model))
	fmt.Printf("│ world     %-34s │\n", fmt.Sprintf("%d entities, %d facts", entityCount, factCount))
	fmt.Printf("│ semantic  %-34s │\n", onOff(semantic))
	fmt.Printf("│ tracing   %-34s │\n", onOff(tracing))
	fmt.Printf("│ http      %-34s │\n", cfg.Server.ListenAddr)
	fmt.Println("└──────────────────────────────────────────────┘")
}
