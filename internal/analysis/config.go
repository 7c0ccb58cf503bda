package analysis

import "github.com/kwoncho1001/Jomath/internal/models"

// Tier holds one value per difficulty tier.
type Tier struct {
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`
	Low  float64 `json:"low"`
}

// For returns the tier value for a difficulty. Unrecognized tiers fall back to
// the mid value.
func (t Tier) For(d models.Difficulty) float64 {
	switch d {
	case models.DifficultyHigh:
		return t.High
	case models.DifficultyLow:
		return t.Low
	default:
		return t.Mid
	}
}

// Config carries every tunable of one pipeline run. It is a plain value passed
// explicitly into each computation; nothing in the pipeline holds shared
// mutable state across invocations.
type Config struct {
	// MinTestCount is the minimum number of Test-sourced transactions a
	// difficulty tier needs before a real score is reported. Book-sourced
	// volume never counts toward this threshold.
	MinTestCount int `json:"min_test_count" validate:"min=0"`

	// RecentCount bounds the recency window: only the newest RecentCount
	// transactions of a subset feed the difficulty index.
	RecentCount int `json:"recent_count" validate:"min=1"`

	// Weights are the per-tier scoring weights.
	Weights Tier `json:"weights"`

	// DifficultyRatio blends the three tier scores into the display score.
	DifficultyRatio Tier `json:"difficulty_ratio"`

	// SelectedUnits is the set of topic-path prefixes defining the analysis
	// scope, each of the form "subject", "subject|major" or
	// "subject|major|minor".
	SelectedUnits []string `json:"selected_units"`
}

// Test and Book indexes blend 70/30 whenever Book evidence exists for a tier.
const (
	testBlendRatio = 0.7
	bookBlendRatio = 0.3
)

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MinTestCount:    1,
		RecentCount:     5,
		Weights:         Tier{High: 1.2, Mid: 1.0, Low: 0.8},
		DifficultyRatio: Tier{High: 1, Mid: 1, Low: 1},
	}
}
