// Package recommend scores fixed catalogues of technologies, architecture
// patterns, performance, security and cost measures against a project's
// requirements and returns them ranked.
package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"launchhub/internal/model"
)

// Rating is a five-point ordinal scale.
type Rating string

const (
	RatingVeryLow  Rating = "very_low"
	RatingLow      Rating = "low"
	RatingMedium   Rating = "medium"
	RatingHigh     Rating = "high"
	RatingVeryHigh Rating = "very_high"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingVeryLow, RatingLow, RatingMedium, RatingHigh, RatingVeryHigh:
		return true
	}
	return false
}

func (r *Rating) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !Rating(raw).Valid() {
		return fmt.Errorf("unknown rating %q", raw)
	}
	*r = Rating(raw)
	return nil
}

// Experience is the team's familiarity with modern stacks.
type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

func (e Experience) Valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

func (e *Experience) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if !Experience(raw).Valid() {
		return fmt.Errorf("unknown experience %q", raw)
	}
	*e = Experience(raw)
	return nil
}

// Complexity is the implementation effort class of a recommendation.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Tradeoffs lists what a recommendation buys and what it costs.
type Tradeoffs struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// Effort is the estimated implementation effort.
type Effort struct {
	Hours      int        `json:"hours"`
	Complexity Complexity `json:"complexity"`
}

// ScoredRecommendation is computed per request and never persisted.
type ScoredRecommendation struct {
	Recommendation      string    `json:"recommendation"`
	Score               int       `json:"score"`
	Reasoning           string    `json:"reasoning"`
	Tradeoffs           Tradeoffs `json:"tradeoffs"`
	ImplementationSteps []string  `json:"implementationSteps"`
	EstimatedEffort     Effort    `json:"estimatedEffort"`
}

// clampScore rounds and bounds a raw score to [0,100].
func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// rank sorts descending by score; equal scores keep catalogue order.
func rank(recs []ScoredRecommendation) []ScoredRecommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// levelFromRating folds the five-point scale onto low/medium/high.
func levelFromRating(r Rating) model.Level {
	switch r {
	case RatingVeryLow, RatingLow:
		return model.LevelLow
	case RatingMedium:
		return model.LevelMedium
	case RatingHigh, RatingVeryHigh:
		return model.LevelHigh
	}
	return model.LevelMedium
}
