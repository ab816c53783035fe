package config

// QualityTier trades speed and cost against classification quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderAzure  ProviderType = "azure"
	ProviderOllama ProviderType = "ollama"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = ".modlens.yml"

// Config is the top-level modlens configuration, corresponding to .modlens.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType   `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string         `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier    `yaml:"quality" koanf:"quality"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	PolicyDir         string         `yaml:"policy_dir" koanf:"policy_dir"`
	Include           []string       `yaml:"include" koanf:"include"`
	Exclude           []string       `yaml:"exclude" koanf:"exclude"`
	Server            ServerConfig   `yaml:"server" koanf:"server"`
	Analysis          AnalysisConfig `yaml:"analysis" koanf:"analysis"`
	LLM               LLMConfig      `yaml:"llm" koanf:"llm"`
	Cache             CacheConfig    `yaml:"cache" koanf:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	MinLength           int `yaml:"min_length" koanf:"min_length"`
	MaxLength           int `yaml:"max_length" koanf:"max_length"`
	CandidateLimit      int `yaml:"candidate_limit" koanf:"candidate_limit"`
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds" koanf:"stage_timeout_seconds"`
}

// LLMConfig holds completion parameters shared by the agents.
type LLMConfig struct {
	RequestsPerMinute int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Temperature       float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens         int     `yaml:"max_tokens" koanf:"max_tokens"`
}

// CacheConfig controls the in-memory embedding cache.
type CacheConfig struct {
	EmbeddingTTLMinutes int `yaml:"embedding_ttl_minutes" koanf:"embedding_ttl_minutes"`
}
