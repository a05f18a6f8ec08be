package models

// Recommendation priorities: 1 is acted on first.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// RebalanceRecommendation is a single prioritized target-weight change.
// WeightChange is always TargetWeight − CurrentWeight exactly; the generator
// enforces this as an invariant. Produced fresh on each pass, never
// persisted.
type RebalanceRecommendation struct {
	Symbol        string  `json:"symbol"`
	CurrentWeight float64 `json:"current_weight"`
	TargetWeight  float64 `json:"target_weight"`
	WeightChange  float64 `json:"weight_change"`
	Reason        string  `json:"reason"`
	Priority      int     `json:"priority"`
}

// PolicyResult is the outcome of a policy validation pass. Violations make
// the portfolio invalid; warnings are advisory only and never affect
// IsValid. Both are data, not errors — the caller decides what to do.
type PolicyResult struct {
	IsValid    bool     `json:"is_valid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}
