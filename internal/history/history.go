// Package history keeps a queryable log of completed analyses and policy
// ingests in SQLite.
package history

import (
	"errors"
	"time"

	"github.com/modlens/modlens/internal/moderation"
)

// ErrNotFound is returned when an analysis id does not exist.
var ErrNotFound = errors.New("analysis not found")

// Entry is one recorded analysis.
type Entry struct {
	ID             string                              `json:"id"`
	CreatedAt      time.Time                           `json:"created_at"`
	Text           string                              `json:"text"`
	Classification string                              `json:"classification"`
	Confidence     moderation.ConfidenceLevel          `json:"confidence"`
	Action         moderation.ActionType               `json:"action"`
	Severity       moderation.SeverityLevel            `json:"severity"`
	PolicyCount    int                                 `json:"policy_count"`
	Response       *moderation.DetailedAnalyzeResponse `json:"response,omitempty"`
}

// Ingest is one recorded batch of policy documents added to the index.
type Ingest struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source"`
	DocumentCount int       `json:"document_count"`
}
