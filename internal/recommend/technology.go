package recommend

import (
	"fmt"
	"strings"

	"launchhub/internal/model"
)

// Technology categories.
const (
	CategoryFrontend       = "frontend"
	CategoryBackend        = "backend"
	CategoryDatabase       = "database"
	CategoryInfrastructure = "infrastructure"
)

// ShortTimelineMonths is the timeline at or below which steep learning
// curves are penalised. A zero timeline means unknown.
const (
	ShortTimelineMonths  = 3
	ShortTimelinePenalty = 30
)

// Requirements selects the catalogue to score.
type Requirements struct {
	Category string   `json:"category"`
	Features []string `json:"features,omitempty"`
}

// Context describes the team and constraints.
type Context struct {
	Experience     Experience `json:"experience"`
	TimelineMonths int        `json:"timelineMonths"`
	Budget         Rating     `json:"budget,omitempty"`
	TeamSize       int        `json:"teamSize,omitempty"`
}

// Weights are percentages applied to the cost and performance scores.
type Weights struct {
	Cost        int `json:"cost"`
	Performance int `json:"performance"`
}

// DefaultWeights balances cost and performance equally.
var DefaultWeights = Weights{Cost: 50, Performance: 50}

// Technology is one entry of a category catalogue.
type Technology struct {
	Name          string
	LearningCurve model.Level
	Cost          Rating
	Performance   Rating
	Ecosystem     Rating
	Pros          []string
	Cons          []string
	Steps         []string
	Hours         int
	Complexity    Complexity
}

var technologyCatalogue = map[string][]Technology{
	CategoryFrontend: {
		{Name: "React", LearningCurve: model.LevelMedium, Cost: RatingVeryLow, Performance: RatingHigh, Ecosystem: RatingVeryHigh,
			Pros: []string{"Largest component ecosystem", "Large hiring pool"}, Cons: []string{"Many competing state libraries"},
			Steps: []string{"Scaffold with Vite", "Set up routing", "Choose state management", "Add component library"}, Hours: 40, Complexity: ComplexityMedium},
		{Name: "Vue.js", LearningCurve: model.LevelLow, Cost: RatingVeryLow, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Gentle learning curve", "Batteries-included tooling"}, Cons: []string{"Smaller enterprise adoption"},
			Steps: []string{"Scaffold with create-vue", "Configure Vue Router", "Add Pinia store"}, Hours: 32, Complexity: ComplexityLow},
		{Name: "Angular", LearningCurve: model.LevelHigh, Cost: RatingVeryLow, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Opinionated full framework", "Strong typing throughout"}, Cons: []string{"Steep learning curve", "Verbose"},
			Steps: []string{"Generate workspace with Angular CLI", "Define modules and services", "Configure RxJS patterns"}, Hours: 60, Complexity: ComplexityHigh},
		{Name: "Svelte", LearningCurve: model.LevelLow, Cost: RatingVeryLow, Performance: RatingVeryHigh, Ecosystem: RatingMedium,
			Pros: []string{"Minimal runtime", "Very fast"}, Cons: []string{"Smaller ecosystem"},
			Steps: []string{"Scaffold with SvelteKit", "Define routes", "Add stores"}, Hours: 30, Complexity: ComplexityLow},
		{Name: "Next.js", LearningCurve: model.LevelMedium, Cost: RatingLow, Performance: RatingVeryHigh, Ecosystem: RatingVeryHigh,
			Pros: []string{"Server rendering built in", "SEO friendly"}, Cons: []string{"Hosting coupling for some features"},
			Steps: []string{"Create app router project", "Define data fetching strategy", "Configure deployment"}, Hours: 48, Complexity: ComplexityMedium},
	},
	CategoryBackend: {
		{Name: "Node.js", LearningCurve: model.LevelLow, Cost: RatingLow, Performance: RatingMedium, Ecosystem: RatingVeryHigh,
			Pros: []string{"Same language as the frontend", "Huge package registry"}, Cons: []string{"CPU-bound work needs care"},
			Steps: []string{"Choose framework (Express/Fastify)", "Set up API layer", "Add validation and auth"}, Hours: 40, Complexity: ComplexityLow},
		{Name: "Go", LearningCurve: model.LevelMedium, Cost: RatingVeryLow, Performance: RatingVeryHigh, Ecosystem: RatingHigh,
			Pros: []string{"Fast and memory efficient", "Simple deployment"}, Cons: []string{"Fewer high-level frameworks"},
			Steps: []string{"Define HTTP router", "Add database layer", "Set up structured logging"}, Hours: 56, Complexity: ComplexityMedium},
		{Name: "Django", LearningCurve: model.LevelMedium, Cost: RatingLow, Performance: RatingMedium, Ecosystem: RatingHigh,
			Pros: []string{"Admin and ORM included", "Mature"}, Cons: []string{"Monolithic conventions"},
			Steps: []string{"Create project and apps", "Define models", "Configure Django REST framework"}, Hours: 48, Complexity: ComplexityMedium},
		{Name: "Spring Boot", LearningCurve: model.LevelHigh, Cost: RatingMedium, Performance: RatingHigh, Ecosystem: RatingVeryHigh,
			Pros: []string{"Enterprise grade", "Rich integrations"}, Cons: []string{"Heavy runtime", "Steep learning curve"},
			Steps: []string{"Generate with Spring Initializr", "Define entities and repositories", "Configure security"}, Hours: 72, Complexity: ComplexityHigh},
		{Name: "Ruby on Rails", LearningCurve: model.LevelMedium, Cost: RatingLow, Performance: RatingLow, Ecosystem: RatingHigh,
			Pros: []string{"Very fast prototyping", "Convention over configuration"}, Cons: []string{"Slower runtime"},
			Steps: []string{"Generate app", "Scaffold resources", "Add background jobs"}, Hours: 40, Complexity: ComplexityLow},
	},
	CategoryDatabase: {
		{Name: "PostgreSQL", LearningCurve: model.LevelMedium, Cost: RatingLow, Performance: RatingHigh, Ecosystem: RatingVeryHigh,
			Pros: []string{"Relational with JSONB documents", "Strong consistency"}, Cons: []string{"Needs schema migrations"},
			Steps: []string{"Provision managed instance", "Design schema", "Set up migrations and backups"}, Hours: 24, Complexity: ComplexityMedium},
		{Name: "MongoDB", LearningCurve: model.LevelLow, Cost: RatingMedium, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Flexible documents", "Easy horizontal scaling"}, Cons: []string{"Joins are limited"},
			Steps: []string{"Provision Atlas cluster", "Design collections", "Add indexes"}, Hours: 20, Complexity: ComplexityLow},
		{Name: "MySQL", LearningCurve: model.LevelLow, Cost: RatingLow, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Ubiquitous hosting", "Simple operations"}, Cons: []string{"Fewer advanced types"},
			Steps: []string{"Provision instance", "Design schema", "Configure replication"}, Hours: 20, Complexity: ComplexityLow},
		{Name: "Firebase Firestore", LearningCurve: model.LevelLow, Cost: RatingMedium, Performance: RatingMedium, Ecosystem: RatingMedium,
			Pros: []string{"Realtime sync", "No servers to run"}, Cons: []string{"Vendor lock-in", "Query limitations"},
			Steps: []string{"Create Firebase project", "Define security rules", "Model collections"}, Hours: 16, Complexity: ComplexityLow},
		{Name: "Cassandra", LearningCurve: model.LevelHigh, Cost: RatingHigh, Performance: RatingVeryHigh, Ecosystem: RatingMedium,
			Pros: []string{"Massive write throughput"}, Cons: []string{"Query-driven modelling", "Operationally demanding"},
			Steps: []string{"Model tables per query", "Provision cluster", "Tune compaction"}, Hours: 80, Complexity: ComplexityHigh},
	},
	CategoryInfrastructure: {
		{Name: "AWS", LearningCurve: model.LevelHigh, Cost: RatingMedium, Performance: RatingVeryHigh, Ecosystem: RatingVeryHigh,
			Pros: []string{"Broadest service catalogue"}, Cons: []string{"Complex pricing", "Steep learning curve"},
			Steps: []string{"Set up accounts and IAM", "Define infrastructure as code", "Configure monitoring"}, Hours: 60, Complexity: ComplexityHigh},
		{Name: "Google Cloud", LearningCurve: model.LevelMedium, Cost: RatingMedium, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Strong data and ML services"}, Cons: []string{"Smaller partner ecosystem"},
			Steps: []string{"Create project and IAM", "Deploy to Cloud Run", "Configure logging"}, Hours: 40, Complexity: ComplexityMedium},
		{Name: "Azure", LearningCurve: model.LevelHigh, Cost: RatingMedium, Performance: RatingHigh, Ecosystem: RatingHigh,
			Pros: []string{"Enterprise integration"}, Cons: []string{"Portal complexity"},
			Steps: []string{"Create subscription and resource groups", "Deploy App Service", "Configure Monitor"}, Hours: 56, Complexity: ComplexityHigh},
		{Name: "Vercel", LearningCurve: model.LevelLow, Cost: RatingLow, Performance: RatingHigh, Ecosystem: RatingMedium,
			Pros: []string{"Zero-config deploys", "Global edge network"}, Cons: []string{"Limited backend workloads"},
			Steps: []string{"Connect repository", "Configure environments", "Set custom domain"}, Hours: 8, Complexity: ComplexityLow},
		{Name: "DigitalOcean", LearningCurve: model.LevelLow, Cost: RatingVeryLow, Performance: RatingMedium, Ecosystem: RatingMedium,
			Pros: []string{"Simple predictable pricing"}, Cons: []string{"Fewer managed services"},
			Steps: []string{"Create App Platform app", "Provision managed database", "Configure alerts"}, Hours: 16, Complexity: ComplexityLow},
	},
}

// TechnologyCandidates returns the catalogue for a category; unknown
// categories yield an empty list.
func TechnologyCandidates(category string) []Technology {
	c, ok := technologyCatalogue[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return []Technology{}
	}
	out := make([]Technology, len(c))
	copy(out, c)
	return out
}

func experienceMultiplier(exp Experience, curve model.Level) float64 {
	switch exp {
	case ExperienceBeginner:
		switch curve {
		case model.LevelLow:
			return 1.0
		case model.LevelMedium:
			return 0.7
		case model.LevelHigh:
			return 0.4
		}
	case ExperienceAdvanced:
		switch curve {
		case model.LevelLow, model.LevelMedium:
			return 1.0
		case model.LevelHigh:
			return 0.9
		}
	default:
		switch curve {
		case model.LevelLow:
			return 1.0
		case model.LevelMedium:
			return 0.9
		case model.LevelHigh:
			return 0.7
		}
	}
	return 0.5
}

// Cost and performance score on 0..40 and ecosystem on 0..20, so that with
// the experience term a candidate reaches 100 only at full weights.
func costScore(r Rating) float64 {
	switch r {
	case RatingVeryLow:
		return 40
	case RatingLow:
		return 32
	case RatingMedium:
		return 24
	case RatingHigh:
		return 16
	case RatingVeryHigh:
		return 8
	}
	return 0
}

func performanceScore(r Rating) float64 {
	switch r {
	case RatingVeryLow:
		return 8
	case RatingLow:
		return 16
	case RatingMedium:
		return 24
	case RatingHigh:
		return 32
	case RatingVeryHigh:
		return 40
	}
	return 0
}

func ecosystemScore(r Rating) float64 {
	switch r {
	case RatingVeryLow:
		return 0
	case RatingLow:
		return 5
	case RatingMedium:
		return 10
	case RatingHigh:
		return 15
	case RatingVeryHigh:
		return 20
	}
	return 0
}

// shortTimelinePenalty reports whether t loses points for ctx's timeline. An
// unset timeline is never short.
func shortTimelinePenalty(t Technology, ctx Context) bool {
	return ctx.TimelineMonths > 0 && ctx.TimelineMonths <= ShortTimelineMonths && t.LearningCurve == model.LevelHigh
}

// ScoreTechnology applies the additive formula to one candidate.
func ScoreTechnology(t Technology, ctx Context, w Weights) int {
	score := experienceMultiplier(ctx.Experience, t.LearningCurve)*20 +
		costScore(t.Cost)*(float64(w.Cost)/100) +
		performanceScore(t.Performance)*(float64(w.Performance)/100) +
		ecosystemScore(t.Ecosystem)
	if shortTimelinePenalty(t, ctx) {
		score -= ShortTimelinePenalty
	}
	return clampScore(score)
}

// SelectOptimalTechnologies ranks the catalogue for requirements.Category.
func SelectOptimalTechnologies(req Requirements, ctx Context, w Weights) []ScoredRecommendation {
	candidates := TechnologyCandidates(req.Category)
	recs := make([]ScoredRecommendation, 0, len(candidates))
	for _, t := range candidates {
		recs = append(recs, ScoredRecommendation{
			Recommendation:      t.Name,
			Score:               ScoreTechnology(t, ctx, w),
			Reasoning:           technologyReasoning(t, ctx),
			Tradeoffs:           Tradeoffs{Pros: t.Pros, Cons: t.Cons},
			ImplementationSteps: t.Steps,
			EstimatedEffort:     Effort{Hours: t.Hours, Complexity: t.Complexity},
		})
	}
	return rank(recs)
}

func technologyReasoning(t Technology, ctx Context) string {
	exp := ctx.Experience
	if exp == "" {
		exp = ExperienceIntermediate
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s has a %s learning curve for a %s team, %s cost, %s performance and a %s ecosystem",
		t.Name, t.LearningCurve, exp, humanRating(t.Cost), humanRating(t.Performance), humanRating(t.Ecosystem))
	if shortTimelinePenalty(t, ctx) {
		fmt.Fprintf(&b, "; penalised for a %d-month timeline", ctx.TimelineMonths)
	}
	return b.String()
}

func humanRating(r Rating) string {
	return strings.ReplaceAll(string(r), "_", " ")
}
