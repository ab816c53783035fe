package moderation

import (
	"errors"
	"fmt"
)

// InvalidInputError reports text that cannot be analyzed. Message is safe to
// show to end users.
type InvalidInputError struct {
	Reason  string
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(reason, message string) *InvalidInputError {
	return &InvalidInputError{Reason: reason, Message: message}
}

// ClassificationError means the classifier returned something unusable.
type ClassificationError struct {
	Msg string
	Err error
}

func (e *ClassificationError) Error() string { return joinMsg("classification", e.Msg, e.Err) }
func (e *ClassificationError) Unwrap() error { return e.Err }

// RetrievalError means policy search or reranking failed.
type RetrievalError struct {
	Msg string
	Err error
}

func (e *RetrievalError) Error() string { return joinMsg("retrieval", e.Msg, e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// ReasoningError means the reasoner returned unusable output.
type ReasoningError struct {
	Msg string
	Err error
}

func (e *ReasoningError) Error() string { return joinMsg("reasoning", e.Msg, e.Err) }
func (e *ReasoningError) Unwrap() error { return e.Err }

// AgentExecutionError wraps a failure inside an agent stage.
type AgentExecutionError struct {
	Agent string
	Msg   string
	Err   error
}

func (e *AgentExecutionError) Error() string {
	return joinMsg("agent "+e.Agent, e.Msg, e.Err)
}
func (e *AgentExecutionError) Unwrap() error { return e.Err }

// RecommendationError means the recommender could not produce output.
type RecommendationError struct {
	Msg string
	Err error
}

func (e *RecommendationError) Error() string { return joinMsg("recommendation", e.Msg, e.Err) }
func (e *RecommendationError) Unwrap() error { return e.Err }

// LLMServiceError means the LLM backend failed or returned garbage.
type LLMServiceError struct {
	Provider string
	Err      error
}

func (e *LLMServiceError) Error() string {
	return fmt.Sprintf("llm service %s: %v", e.Provider, e.Err)
}
func (e *LLMServiceError) Unwrap() error { return e.Err }

// PolicyLoadError means policy documents could not be loaded or indexed.
type PolicyLoadError struct {
	Msg string
	Err error
}

func (e *PolicyLoadError) Error() string { return joinMsg("policy load", e.Msg, e.Err) }
func (e *PolicyLoadError) Unwrap() error { return e.Err }

func joinMsg(kind, msg string, err error) string {
	switch {
	case msg != "" && err != nil:
		return fmt.Sprintf("%s: %s: %v", kind, msg, err)
	case msg != "":
		return fmt.Sprintf("%s: %s", kind, msg)
	case err != nil:
		return fmt.Sprintf("%s: %v", kind, err)
	default:
		return kind + " failed"
	}
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
