package orchestrator

// State is a step of the analysis pipeline.
type State int

const (
	Validating State = iota
	Classifying
	Retrieving
	Reasoning
	Recommending
	Assembling
	Done
	Failed
)

var stateNames = [...]string{
	Validating:   "validating",
	Classifying:  "classifying",
	Retrieving:   "retrieving",
	Reasoning:    "reasoning",
	Recommending: "recommending",
	Assembling:   "assembling",
	Done:         "done",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// next is the successful transition out of each non-terminal state.
var next = map[State]State{
	Validating:   Classifying,
	Classifying:  Retrieving,
	Retrieving:   Reasoning,
	Reasoning:    Recommending,
	Recommending: Assembling,
	Assembling:   Done,
}
