package recommend

import "strings"

// rule adjusts an option's score when its condition holds.
type rule[T any] struct {
	when  func(T) bool
	delta float64
	why   string
}

// option is a catalogue entry scored additively from a base.
type option[T any] struct {
	name       string
	base       float64
	rules      []rule[T]
	pros       []string
	cons       []string
	steps      []string
	hours      int
	complexity Complexity
}

func scoreOptions[T any](opts []option[T], in T) []ScoredRecommendation {
	recs := make([]ScoredRecommendation, 0, len(opts))
	for _, o := range opts {
		score := o.base
		var reasons []string
		for _, r := range o.rules {
			if r.when(in) {
				score += r.delta
				reasons = append(reasons, r.why)
			}
		}
		reasoning := "Baseline fit"
		if len(reasons) > 0 {
			reasoning = strings.Join(reasons, "; ")
		}
		recs = append(recs, ScoredRecommendation{
			Recommendation:      o.name,
			Score:               clampScore(score),
			Reasoning:           reasoning,
			Tradeoffs:           Tradeoffs{Pros: o.pros, Cons: o.cons},
			ImplementationSteps: o.steps,
			EstimatedEffort:     Effort{Hours: o.hours, Complexity: o.complexity},
		})
	}
	return rank(recs)
}
