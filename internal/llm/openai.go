package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultMaxTokens = 1024

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
// The same client also serves Azure OpenAI deployments.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		name:   "openai",
	}
}

// AzureOptions locates an Azure OpenAI deployment.
type AzureOptions struct {
	APIKey     string
	Endpoint   string
	APIVersion string
	Deployment string
}

// NewAzureProvider creates a provider for an Azure OpenAI deployment. Every
// model name is routed to opts.Deployment.
func NewAzureProvider(opts AzureOptions) *OpenAIProvider {
	cfg := openai.DefaultAzureConfig(opts.APIKey, opts.Endpoint)
	if opts.APIVersion != "" {
		cfg.APIVersion = opts.APIVersion
	}
	deployment := opts.Deployment
	cfg.AzureModelMapperFunc = func(string) string { return deployment }

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  deployment,
		name:   "azure",
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	}

	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:      choice.Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
	}, nil
}
