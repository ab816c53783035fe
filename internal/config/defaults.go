package config

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

// qualityPresets maps each provider+quality combination to its model choices.
// Azure model names are deployment names.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderAzure: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-ada-002"},
		QualityNormal: {Model: "gpt-4", EmbeddingModel: "text-embedding-ada-002"},
		QualityMax:    {Model: "gpt-4", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultExcludes are glob patterns skipped when loading policy files.
var DefaultExcludes = []string{
	".git/**",
	"**/.*",
	"**/*.bak",
	"**/README.md",
}

// DefaultIncludes are the policy file types loaded by default.
var DefaultIncludes = []string{"**/*.txt", "**/*.md"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		Quality:           QualityNormal,
		DataDir:           ".modlens",
		PolicyDir:         "policies",
		Include:           DefaultIncludes,
		Exclude:           DefaultExcludes,
		Server: ServerConfig{
			Port: 8000,
		},
		Analysis: AnalysisConfig{
			MinLength:           3,
			MaxLength:           5000,
			CandidateLimit:      10,
			StageTimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			RequestsPerMinute: 60,
			Temperature:       0.1,
			MaxTokens:         1024,
		},
		Cache: CacheConfig{
			EmbeddingTTLMinutes: 60,
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal OpenAI preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderOpenAI][QualityNormal]
}
