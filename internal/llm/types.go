package llm

import "context"

// Provider is a chat-completion backend. The classifier and reasoner agents
// are its only callers.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Role is the sender of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is sent to a Provider. JSONMode asks the backend to
// constrain the reply to a single JSON object.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// JSONRequest builds the system+user request every agent sends. Model,
// temperature and token limits are filled in by the caller.
func JSONRequest(system, user string) CompletionRequest {
	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		JSONMode: true,
	}
}

// CompletionResponse is a Provider's reply.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// finishLength is reported by both OpenAI and Ollama when max_tokens cut
// the reply short.
const finishLength = "length"

// Truncated reports whether the reply hit the token limit, in which case
// any JSON it carries is incomplete.
func (r *CompletionResponse) Truncated() bool {
	return r != nil && r.FinishReason == finishLength
}
