package llm

import (
	"fmt"
	"os"
)

// DefaultAzureAPIVersion is used when AZURE_OPENAI_API_VERSION is unset.
const DefaultAzureAPIVersion = "2023-12-01-preview"

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "openai", "azure", "ollama".
func NewProvider(providerType string, model string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "azure":
		apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_API_KEY environment variable is not set")
		}
		endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT environment variable is not set")
		}
		version := os.Getenv("AZURE_OPENAI_API_VERSION")
		if version == "" {
			version = DefaultAzureAPIVersion
		}
		return NewAzureProvider(AzureOptions{
			APIKey:     apiKey,
			Endpoint:   endpoint,
			APIVersion: version,
			Deployment: model,
		}), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = DefaultOllamaHost
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
