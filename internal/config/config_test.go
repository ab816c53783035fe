package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Quality != QualityNormal {
		t.Errorf("expected default quality %q, got %q", QualityNormal, cfg.Quality)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.MinLength != 3 || cfg.Analysis.MaxLength != 5000 {
		t.Errorf("unexpected length limits %d..%d", cfg.Analysis.MinLength, cfg.Analysis.MaxLength)
	}
	if cfg.Analysis.CandidateLimit != 10 {
		t.Errorf("expected candidate_limit 10, got %d", cfg.Analysis.CandidateLimit)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.modlens.yml")

	original := DefaultConfig()
	original.Provider = ProviderAzure
	original.Model = "gpt-4"
	original.Quality = QualityMax
	original.Include = []string{"**/*.txt"}
	original.Server.Port = 9090
	original.Analysis.CandidateLimit = 8
	original.LLM.Temperature = 0.3

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Analysis.CandidateLimit != 8 {
		t.Errorf("analysis.candidate_limit: got %d, want 8", loaded.Analysis.CandidateLimit)
	}
	if loaded.LLM.Temperature != 0.3 {
		t.Errorf("llm.temperature: got %f, want 0.3", loaded.LLM.Temperature)
	}
	if len(loaded.Include) != 1 || loaded.Include[0] != "**/*.txt" {
		t.Errorf("include: got %v", loaded.Include)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("MODLENS_PROVIDER", "ollama")
	t.Setenv("MODLENS_SERVER_PORT", "7070")
	t.Setenv("MODLENS_ANALYSIS_MAX_LENGTH", "200")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.Server.Port != 7070 {
		t.Errorf("nested env override failed: got %d, want 7070", loaded.Server.Port)
	}
	if loaded.Analysis.MaxLength != 200 {
		t.Errorf("nested env override failed: got %d, want 200", loaded.Analysis.MaxLength)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("MODLENS_MODEL=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODLENS_MODEL", "")
	os.Unsetenv("MODLENS_MODEL")

	cfg, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "from-dotenv" {
		t.Errorf("model: got %q, want from-dotenv", cfg.Model)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("MODLENS_MODEL=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODLENS_MODEL", "from-shell")

	cfg, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "from-shell" {
		t.Errorf("model: got %q, want from-shell", cfg.Model)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MODLENS_PROVIDER", "provider"},
		{"MODLENS_EMBEDDING_MODEL", "embedding_model"},
		{"MODLENS_SERVER_PORT", "server.port"},
		{"MODLENS_LLM_REQUESTS_PER_MINUTE", "llm.requests_per_minute"},
		{"MODLENS_CACHE_EMBEDDING_TTL_MINUTES", "cache.embedding_ttl_minutes"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid embedding provider", func(c *Config) { c.EmbeddingProvider = "google" }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"min length zero", func(c *Config) { c.Analysis.MinLength = 0 }},
		{"max below min", func(c *Config) { c.Analysis.MaxLength = 2 }},
		{"candidate limit at final set size", func(c *Config) { c.Analysis.CandidateLimit = 3 }},
		{"candidate limit low", func(c *Config) { c.Analysis.CandidateLimit = 7 }},
		{"candidate limit high", func(c *Config) { c.Analysis.CandidateLimit = 11 }},
		{"candidate limit far above range", func(c *Config) { c.Analysis.CandidateLimit = 50 }},
		{"negative timeout", func(c *Config) { c.Analysis.StageTimeoutSeconds = -1 }},
		{"negative rpm", func(c *Config) { c.LLM.RequestsPerMinute = -1 }},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 2.5 }},
		{"negative max tokens", func(c *Config) { c.LLM.MaxTokens = -1 }},
		{"negative ttl", func(c *Config) { c.Cache.EmbeddingTTLMinutes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateCandidateLimitRange(t *testing.T) {
	for _, n := range []int{8, 9, 10} {
		cfg := DefaultConfig()
		cfg.Analysis.CandidateLimit = n
		if err := cfg.Validate(); err != nil {
			t.Errorf("candidate_limit %d should be valid, got %v", n, err)
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.StageTimeoutSeconds = 5
	cfg.Cache.EmbeddingTTLMinutes = 2
	if got := cfg.StageTimeout(); got != 5*time.Second {
		t.Errorf("StageTimeout = %v", got)
	}
	if got := cfg.EmbeddingTTL(); got != 2*time.Minute {
		t.Errorf("EmbeddingTTL = %v", got)
	}
}

func TestDataPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "data"
	if got := cfg.VectorDir(); got != filepath.Join("data", "vectordb") {
		t.Errorf("VectorDir = %q", got)
	}
	if got := cfg.HistoryPath(); got != filepath.Join("data", "modlens.db") {
		t.Errorf("HistoryPath = %q", got)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderOpenAI, QualityLite)
	if p.Model != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %q", p.Model)
	}

	p = GetPreset(ProviderOllama, QualityMax)
	if p.Model != "llama3:70b" {
		t.Errorf("expected llama3:70b, got %q", p.Model)
	}

	p = GetPreset("unknown", QualityLite)
	if p.Model != "gpt-4o" {
		t.Errorf("expected fallback to gpt-4o, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAzure, "AZURE_OPENAI_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestEmbeddingProviderFor(t *testing.T) {
	if got := embeddingProviderFor(ProviderAzure); got != ProviderAzure {
		t.Errorf("azure: got %q", got)
	}
	if got := embeddingProviderFor(ProviderOllama); got != ProviderOllama {
		t.Errorf("ollama: got %q", got)
	}
	if got := embeddingProviderFor(ProviderOpenAI); got != ProviderOpenAI {
		t.Errorf("openai: got %q", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.md", []string{"**/*.md"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
