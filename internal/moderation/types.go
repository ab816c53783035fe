package moderation

// Label is the category assigned to a piece of text by the classifier.
type Label string

const (
	LabelHate      Label = "hate"
	LabelToxic     Label = "toxic"
	LabelOffensive Label = "offensive"
	LabelNeutral   Label = "neutral"
	LabelAmbiguous Label = "ambiguous"
)

// validLabels is the set of labels the classifier may return.
var validLabels = map[Label]bool{
	LabelHate:      true,
	LabelToxic:     true,
	LabelOffensive: true,
	LabelNeutral:   true,
	LabelAmbiguous: true,
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool { return validLabels[l] }

// Title returns the label capitalized for display ("hate" -> "Hate").
func (l Label) Title() string {
	if l == "" {
		return ""
	}
	s := string(l)
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// ConfidenceLevel is the three-level bucket shown to users.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// BucketConfidence maps a raw confidence to High (>=0.8), Medium (>=0.6) or Low.
func BucketConfidence(c float64) ConfidenceLevel {
	switch {
	case c >= 0.8:
		return ConfidenceHigh
	case c >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ActionType is the recommended moderation action.
type ActionType string

const (
	ActionAllow    ActionType = "ALLOW"
	ActionWarn     ActionType = "WARN"
	ActionRemove   ActionType = "REMOVE"
	ActionEscalate ActionType = "ESCALATE"
	ActionReview   ActionType = "REVIEW"
)

// SeverityLevel grades how serious the content is.
type SeverityLevel string

const (
	SeverityNone     SeverityLevel = "None"
	SeverityLow      SeverityLevel = "Low"
	SeverityMedium   SeverityLevel = "Medium"
	SeverityHigh     SeverityLevel = "High"
	SeverityCritical SeverityLevel = "Critical"
)

// ClassificationResult is produced once per request by the classifier and
// read by every later stage.
type ClassificationResult struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// PolicyCandidate is a raw similarity hit being scored. It lives only inside
// a single retrieval run.
type PolicyCandidate struct {
	ID              string
	Title           string
	Content         string
	Provider        string
	PolicyType      string
	BaseScore       float64
	CompositeScore  float64
	MatchedKeywords []string
}

// PolicyDocument is a selected policy as returned to callers.
type PolicyDocument struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
	Source         string  `json:"source"`
	PolicyType     string  `json:"policy_type"`
	Explanation    string  `json:"explanation"`
}

// RetrievalResult holds at most three policies ordered by relevance.
type RetrievalResult struct {
	QueryUsed       string           `json:"query_used"`
	Policies        []PolicyDocument `json:"policies"`
	TotalCandidates int              `json:"total_candidates"`
}

// ActionRecommendation is derived purely from a ClassificationResult.
type ActionRecommendation struct {
	Action    ActionType    `json:"action"`
	Severity  SeverityLevel `json:"severity"`
	Reasoning string        `json:"reasoning"`
}

// ReasoningResult is the reasoner's overall explanation plus a short
// summary per policy id.
type ReasoningResult struct {
	Explanation     string            `json:"explanation"`
	PolicySummaries map[string]string `json:"policy_summaries"`
}

// HateSpeechClassification is the user-facing view of the classification.
type HateSpeechClassification struct {
	Classification string          `json:"classification"`
	Confidence     ConfidenceLevel `json:"confidence"`
	Reason         string          `json:"reason"`
}

// PolicySummary describes how one policy applies to the analyzed text.
type PolicySummary struct {
	Source         string  `json:"source"`
	Summary        string  `json:"summary"`
	RelevanceScore float64 `json:"relevance_score"`
}

// DetailedAnalyzeResponse is the single artifact returned for an analysis.
type DetailedAnalyzeResponse struct {
	HateSpeech HateSpeechClassification `json:"hate_speech"`
	Policies   []PolicySummary          `json:"policies"`
	Reasoning  string                   `json:"reasoning"`
	Action     ActionRecommendation     `json:"action"`
	Retrieval  RetrievalResult          `json:"retrieval"`
}
