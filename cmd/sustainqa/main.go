package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"sustainability-qa/internal/config"
	embedgemini "sustainability-qa/internal/embedding/gemini"
	llmgemini "sustainability-qa/internal/llm/gemini"
	"sustainability-qa/internal/retriever"
	"sustainability-qa/internal/service"
	"sustainability-qa/internal/tui"
	"sustainability-qa/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/sustainqa/config.yaml if not provided)")
	var indexPath string
	flag.StringVar(&indexPath, "index", "", "Path to the prebuilt index directory (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if indexPath != "" {
		cfg.Store.Path = indexPath
	}

	// Assemble components. A missing credential or unloadable index is fatal
	// here, before any question is accepted.
	timeout := time.Duration(cfg.Gemini.TimeoutSecs) * time.Second

	emb, err := embedgemini.NewClient(embedgemini.Config{
		BaseURL:   cfg.Gemini.BaseURL,
		APIKeyEnv: cfg.Gemini.APIKeyEnv,
		Model:     cfg.Gemini.EmbeddingModel,
		Timeout:   timeout,
	})
	if err != nil {
		log.Fatalf("gemini embedder init failed: %v", err)
	}

	gen, err := llmgemini.NewClient(llmgemini.Config{
		BaseURL:   cfg.Gemini.BaseURL,
		APIKeyEnv: cfg.Gemini.APIKeyEnv,
		Model:     cfg.Gemini.Model,
		Timeout:   timeout,
	})
	if err != nil {
		log.Fatalf("gemini client init failed: %v", err)
	}

	loader := vectorstore.NewLoader(cfg.Store.Path)
	defer loader.Close()
	store, err := loader.Load()
	if err != nil {
		log.Fatalf("failed to open vector index: %v", err)
	}

	ret := retriever.NewMMR(store, emb, retriever.Config{
		TopK:     cfg.Retrieval.TopK,
		FetchK:   cfg.Retrieval.FetchK,
		Lambda:   cfg.Retrieval.Lambda,
		MinScore: cfg.Retrieval.MinScore,
	})
	svc := service.NewQAService(ret, gen)

	about := fmt.Sprintf("index: %s (%d chunks)", cfg.Store.Path, store.Len())
	m := tui.New(svc, about)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
