package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "MODLENS_"

// sections are the nested config blocks addressable from the environment,
// e.g. MODLENS_SERVER_PORT -> server.port.
var sections = []string{"server", "analysis", "llm", "cache"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MODLENS_*). A .env file next to the config
// file is loaded into the process environment first; variables already set
// win.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps MODLENS_ANALYSIS_MAX_LENGTH to analysis.max_length.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return sec + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding existing variables. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderAzure:  true,
	ProviderOllama: true,
}

var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

// Candidate limit bounds. Fetching more hits than retrieval.MaxPolicies
// leaves the reranker and diversity pass something to choose from.
const (
	minCandidateLimit = 8
	maxCandidateLimit = 10
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, azure, ollama", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q", c.EmbeddingProvider)
	}
	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	a := c.Analysis
	if a.MinLength < 1 {
		return fmt.Errorf("analysis.min_length must be at least 1")
	}
	if a.MaxLength < a.MinLength {
		return fmt.Errorf("analysis.max_length (%d) must not be below min_length (%d)", a.MaxLength, a.MinLength)
	}
	if a.CandidateLimit < minCandidateLimit || a.CandidateLimit > maxCandidateLimit {
		return fmt.Errorf("analysis.candidate_limit must be between %d and %d", minCandidateLimit, maxCandidateLimit)
	}
	if a.StageTimeoutSeconds < 0 {
		return fmt.Errorf("analysis.stage_timeout_seconds must be non-negative")
	}

	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must be non-negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must be non-negative")
	}
	if c.Cache.EmbeddingTTLMinutes < 0 {
		return fmt.Errorf("cache.embedding_ttl_minutes must be non-negative")
	}

	return nil
}

// StageTimeout returns the per-stage timeout, zero meaning none.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Analysis.StageTimeoutSeconds) * time.Second
}

// EmbeddingTTL returns how long cached embeddings live.
func (c *Config) EmbeddingTTL() time.Duration {
	return time.Duration(c.Cache.EmbeddingTTLMinutes) * time.Minute
}

// VectorDir is where the vector store snapshot lives.
func (c *Config) VectorDir() string {
	return filepath.Join(c.DataDir, "vectordb")
}

// HistoryPath is the SQLite database recording analyses.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "modlens.db")
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAzure:
		return "AZURE_OPENAI_API_KEY"
	default:
		return ""
	}
}
