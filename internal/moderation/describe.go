package moderation

import "errors"

// ErrorReport is a user-facing description of a failed analysis.
type ErrorReport struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Describe maps err to an ErrorReport. Invalid input keeps its own
// corrective message; everything else gets a generic message per kind.
func Describe(err error) ErrorReport {
	var (
		invalid        *InvalidInputError
		classification *ClassificationError
		retrieval      *RetrievalError
		llmErr         *LLMServiceError
		reasoning      *ReasoningError
		agent          *AgentExecutionError
		recommendation *RecommendationError
	)

	switch {
	case errors.As(err, &invalid):
		return ErrorReport{
			Type:       "Invalid Input",
			Message:    invalid.Message,
			Suggestion: "Adjust the text and submit it again.",
		}
	case errors.As(err, &classification):
		return ErrorReport{
			Type:       "Classification Error",
			Message:    "Unable to classify the text. Please try again.",
			Suggestion: "Check if the text contains valid content for analysis.",
		}
	case errors.As(err, &retrieval):
		return ErrorReport{
			Type:       "Policy Retrieval Error",
			Message:    "Unable to retrieve relevant policies.",
			Suggestion: "The policy database may be temporarily unavailable.",
		}
	case errors.As(err, &llmErr):
		return ErrorReport{
			Type:       "AI Service Error",
			Message:    "The AI service is temporarily unavailable.",
			Suggestion: "Please try again in a few moments.",
		}
	case errors.As(err, &reasoning), errors.As(err, &agent), errors.As(err, &recommendation):
		return ErrorReport{
			Type:       "Agent Error",
			Message:    "An agent failed to complete its task.",
			Suggestion: "Please retry the operation.",
		}
	default:
		return ErrorReport{
			Type:       "System Error",
			Message:    "An unexpected error occurred.",
			Suggestion: "If the problem persists, contact support.",
		}
	}
}
