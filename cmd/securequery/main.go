package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"securequery/internal/answerer"
	"securequery/internal/config"
	"securequery/internal/embedding"
	"securequery/internal/service"
	"securequery/internal/tui"
	"securequery/internal/vectorstore"
	"securequery/internal/vectorstore/badger"
	"securequery/internal/vectorstore/memory"
	"securequery/internal/vectorstore/qdrant"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("securequery failed")
		os.Exit(1)
	}
}

// run holds the whole session so deferred cleanup (store close) executes on
// every error path.
func run() error {
	_ = godotenv.Load()

	var cfgPath, logType string
	var clear bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/securequery/config.yaml if not provided)")
	flag.StringVar(&logType, "type", "cloudtrail", "Log type of the ingested file: cloudtrail or json")
	flag.BoolVar(&clear, "clear", false, "Clear the vector index before ingesting")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) > 1 {
		fmt.Println("Usage: securequery [--config=config.yaml] [--type=cloudtrail|json] [--clear] [logfile.json]")
		return fmt.Errorf("expected at most one log file, got %d", len(inputs))
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.DefaultLogger.Level = log.ParseLevel(cfg.LogLevel)

	ctx := context.Background()

	// Assemble components
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("initializing embedding backend: %w", err)
	}

	var store vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "badger", "":
		store, err = badger.Open(cfg.VectorStore.Path, cfg.VectorStore.Collection)
		if err != nil {
			return fmt.Errorf("opening vector store: %w", err)
		}
	case "memory":
		store = memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return errors.New("vector store type is qdrant but the qdrant config section is missing")
		}
		store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		return fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	defer store.Close()

	// The generative credential is resolved separately from the embedding
	// credential; a missing key disables querying, not the whole session.
	ans, err := answerer.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("initializing generative backend: %w", err)
	}

	svc := service.New(emb, store, ans)

	if clear {
		if err := svc.ClearIndex(ctx); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	if len(inputs) == 1 {
		res, err := svc.Ingest(ctx, inputs[0], logType)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", inputs[0], err)
		}
		log.Info().
			Int("ingested", res.Ingested).
			Int("skipped", res.Skipped).
			Str("file", inputs[0]).
			Msg("log file ingested")
	}

	count, err := svc.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading index count: %w", err)
	}

	m := tui.New(svc, count, cfg.Retrieval.TopK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
