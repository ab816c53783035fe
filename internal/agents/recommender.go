package agents

import (
	"context"
	"fmt"

	"github.com/modlens/modlens/internal/moderation"
)

// Confidence thresholds for the recommendation table.
const (
	hateEscalateThreshold = 0.8
	toxicWarnThreshold    = 0.7
)

// Recommend maps a classification to a moderation action:
//
//	hate      >= 0.8  ESCALATE / High
//	hate      <  0.8  REVIEW   / Medium
//	toxic     >= 0.7  WARN     / Medium
//	toxic     <  0.7  REVIEW   / Low
//	offensive         REVIEW   / Low
//	ambiguous         REVIEW   / Low
//	neutral, unknown  ALLOW    / None
func Recommend(c moderation.ClassificationResult) moderation.ActionRecommendation {
	conf := c.Confidence

	switch c.Label {
	case moderation.LabelHate:
		if conf >= hateEscalateThreshold {
			return rec(moderation.ActionEscalate, moderation.SeverityHigh,
				fmt.Sprintf("Hate speech detected with high confidence (%.2f); escalate to a human moderator.", conf))
		}
		return rec(moderation.ActionReview, moderation.SeverityMedium,
			fmt.Sprintf("Possible hate speech (confidence %.2f); needs manual review.", conf))

	case moderation.LabelToxic:
		if conf >= toxicWarnThreshold {
			return rec(moderation.ActionWarn, moderation.SeverityMedium,
				fmt.Sprintf("Toxic content detected (confidence %.2f); warn the author and monitor.", conf))
		}
		return rec(moderation.ActionReview, moderation.SeverityLow,
			fmt.Sprintf("Possibly toxic content (confidence %.2f); needs manual review.", conf))

	case moderation.LabelOffensive:
		return rec(moderation.ActionReview, moderation.SeverityLow,
			fmt.Sprintf("Offensive content (confidence %.2f); flag for review.", conf))

	case moderation.LabelAmbiguous:
		return rec(moderation.ActionReview, moderation.SeverityLow,
			fmt.Sprintf("Ambiguous content (confidence %.2f); send for manual review.", conf))

	default:
		return rec(moderation.ActionAllow, moderation.SeverityNone, "No policy violation detected.")
	}
}

func rec(action moderation.ActionType, sev moderation.SeverityLevel, reasoning string) moderation.ActionRecommendation {
	return moderation.ActionRecommendation{Action: action, Severity: sev, Reasoning: reasoning}
}

var simpleRecommendations = map[moderation.Label]string{
	moderation.LabelHate:      "Escalate to human moderator and restrict account",
	moderation.LabelToxic:     "Issue warning and monitor behavior",
	moderation.LabelOffensive: "Flag for review",
	moderation.LabelAmbiguous: "Send for manual review",
	moderation.LabelNeutral:   "No action needed",
}

// SimpleRecommendation is a one-line suggestion for label.
func SimpleRecommendation(label moderation.Label) string {
	if s, ok := simpleRecommendations[label]; ok {
		return s
	}
	return "No action needed"
}

// Recommender exposes Recommend as a pipeline agent.
type Recommender struct{}

// NewRecommender returns a Recommender.
func NewRecommender() *Recommender { return &Recommender{} }

func (r *Recommender) Name() string { return "recommender" }

func (r *Recommender) Execute(ctx context.Context, c moderation.ClassificationResult) (moderation.ActionRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return moderation.ActionRecommendation{}, &moderation.RecommendationError{Msg: "cancelled", Err: err}
	}
	return Recommend(c), nil
}
