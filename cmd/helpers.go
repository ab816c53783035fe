package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modlens/modlens/internal/agents"
	"github.com/modlens/modlens/internal/config"
	"github.com/modlens/modlens/internal/db"
	"github.com/modlens/modlens/internal/embeddings"
	"github.com/modlens/modlens/internal/history"
	"github.com/modlens/modlens/internal/llm"
	"github.com/modlens/modlens/internal/orchestrator"
	"github.com/modlens/modlens/internal/retrieval"
	"github.com/modlens/modlens/internal/vectordb"
)

// ollamaEmbeddingDims matches nomic-embed-text.
const ollamaEmbeddingDims = 768

// createEmbedderFromConfig returns a cached embedder that is only built,
// and only checks credentials, on first use.
func createEmbedderFromConfig(cfg *config.Config) embeddings.Embedder {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider, cfg.Quality).EmbeddingModel
	}

	dims := embeddings.OpenAIModel(model).Dimensions()
	if provider == config.ProviderOllama {
		dims = ollamaEmbeddingDims
	}

	lazy := embeddings.NewLazy(model, dims, func() (embeddings.Embedder, error) {
		switch provider {
		case config.ProviderOllama:
			return embeddings.NewOllamaEmbedder(model, ollamaEmbeddingDims, os.Getenv("OLLAMA_HOST")), nil
		case config.ProviderAzure:
			apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderAzure))
			endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
			if apiKey == "" || endpoint == "" {
				return nil, fmt.Errorf("AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are required for Azure embeddings")
			}
			return embeddings.NewAzureEmbedder(apiKey, endpoint, os.Getenv("AZURE_OPENAI_API_VERSION"), embeddings.OpenAIModel(model)), nil
		default:
			apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
			if apiKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
			}
			return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
		}
	})
	return embeddings.NewCachedEmbedder(lazy, cfg.EmbeddingTTL())
}

// createLLMProviderFromConfig creates a rate-limited LLM provider.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(p, cfg.LLM.RequestsPerMinute), nil
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `modlens init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app bundles the long-lived resources shared by commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *vectordb.ChromemStore
	database *db.DB
	history  *history.Store
}

// openApp loads config and opens the vector store. The history database is
// opened only when withHistory is set.
func openApp(ctx context.Context, withHistory bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := vectordb.Open(ctx, createEmbedderFromConfig(cfg), cfg.VectorDir())
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	a := &app{cfg: cfg, logger: slog.Default(), store: store}
	if withHistory {
		if err := a.openHistory(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openHistory() error {
	database, err := db.Open(a.cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.database = database
	a.history = history.NewStore(database)
	return nil
}

func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

// orchestrator wires the analysis pipeline over the app's store.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	provider, err := createLLMProviderFromConfig(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	opts := agents.LLMOptions{
		Model:       a.cfg.Model,
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
	}
	stages := orchestrator.Stages{
		Classifier: agents.NewClassifier(provider, opts),
		Retriever: retrieval.NewRetriever(
			retrieval.NewStoreSource(a.store),
			retrieval.WithCandidateLimit(a.cfg.Analysis.CandidateLimit),
		),
		Reasoner:    agents.NewReasoner(provider, opts),
		Recommender: agents.NewRecommender(),
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithLengthLimits(a.cfg.Analysis.MinLength, a.cfg.Analysis.MaxLength),
		orchestrator.WithStageTimeout(a.cfg.StageTimeout()),
	}
	if a.history != nil {
		orchOpts = append(orchOpts, orchestrator.WithRecorder(a.history))
	}
	return orchestrator.New(stages, orchOpts...), nil
}
