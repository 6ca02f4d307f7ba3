package recommend

import "launchhub/internal/model"

// ArchitectureRequirements describes the system being planned.
type ArchitectureRequirements struct {
	ExpectedUsers  int         `json:"expectedUsers"`
	TeamSize       int         `json:"teamSize"`
	TimelineMonths int         `json:"timelineMonths"`
	Complexity     model.Level `json:"complexity"`
	RealTime       bool        `json:"realTime"`
	Budget         Rating      `json:"budget,omitempty"`
}

func smallTeam(r ArchitectureRequirements) bool {
	return r.TeamSize > 0 && r.TeamSize <= 5
}

func largeTeam(r ArchitectureRequirements) bool {
	return r.TeamSize >= 15
}

func shortTimeline(r ArchitectureRequirements) bool {
	return r.TimelineMonths > 0 && r.TimelineMonths <= ShortTimelineMonths
}

func highScale(r ArchitectureRequirements) bool {
	return r.ExpectedUsers > 100_000
}

func tightBudget(r ArchitectureRequirements) bool {
	return r.Budget == RatingVeryLow || r.Budget == RatingLow
}

var architecturePatterns = []option[ArchitectureRequirements]{
	{
		name: "Monolith", base: 60,
		rules: []rule[ArchitectureRequirements]{
			{smallTeam, 20, "Small team benefits from a single deployable"},
			{shortTimeline, 15, "Fastest path to a first release"},
			{highScale, -25, "Scaling the whole application at once gets expensive"},
			{func(r ArchitectureRequirements) bool { return r.Complexity == model.LevelHigh }, -10, "High domain complexity strains a single codebase"},
		},
		pros:  []string{"Simple deployment", "Easy local development"},
		cons:  []string{"Coarse-grained scaling", "Coupling grows over time"},
		steps: []string{"Define module boundaries", "Set up a single CI pipeline", "Deploy behind a load balancer"},
		hours: 40, complexity: ComplexityLow,
	},
	{
		name: "Modular Monolith", base: 65,
		rules: []rule[ArchitectureRequirements]{
			{func(r ArchitectureRequirements) bool { return r.TeamSize > 0 && r.TeamSize <= 15 }, 10, "Team size suits enforced module boundaries"},
			{func(r ArchitectureRequirements) bool { return r.Complexity != model.LevelLow && r.Complexity != "" }, 10, "Module boundaries contain domain complexity"},
			{func(r ArchitectureRequirements) bool { return r.ExpectedUsers > 1_000_000 }, -10, "Very high scale may require independent services"},
		},
		pros:  []string{"Clear boundaries without distributed overhead", "Can be split later"},
		cons:  []string{"Requires discipline to keep modules isolated"},
		steps: []string{"Identify bounded contexts", "Enforce module APIs", "Share one database with per-module schemas"},
		hours: 60, complexity: ComplexityMedium,
	},
	{
		name: "Microservices", base: 40,
		rules: []rule[ArchitectureRequirements]{
			{largeTeam, 25, "Large team can own independent services"},
			{highScale, 20, "Independent scaling per service"},
			{func(r ArchitectureRequirements) bool { return r.Complexity == model.LevelHigh }, 10, "Complex domain splits along service lines"},
			{shortTimeline, -30, "Distributed infrastructure slows the first release"},
			{func(r ArchitectureRequirements) bool { return r.TeamSize > 0 && r.TeamSize < 5 }, -20, "Too few engineers to operate many services"},
		},
		pros:  []string{"Independent deploys and scaling", "Technology freedom per service"},
		cons:  []string{"Operational overhead", "Distributed failure modes"},
		steps: []string{"Define service boundaries", "Set up service discovery and messaging", "Add distributed tracing"},
		hours: 160, complexity: ComplexityHigh,
	},
	{
		name: "Serverless", base: 55,
		rules: []rule[ArchitectureRequirements]{
			{tightBudget, 15, "Pay-per-use pricing fits a tight budget"},
			{func(r ArchitectureRequirements) bool { return r.ExpectedUsers > 0 && r.ExpectedUsers <= 10_000 }, 10, "Low traffic stays within free tiers"},
			{shortTimeline, 10, "No servers to provision"},
			{func(r ArchitectureRequirements) bool { return r.RealTime }, -15, "Long-lived connections fit poorly"},
		},
		pros:  []string{"No server management", "Scales to zero"},
		cons:  []string{"Cold starts", "Vendor lock-in"},
		steps: []string{"Split endpoints into functions", "Configure API gateway", "Set up managed storage"},
		hours: 48, complexity: ComplexityMedium,
	},
	{
		name: "JAMstack", base: 50,
		rules: []rule[ArchitectureRequirements]{
			{func(r ArchitectureRequirements) bool { return r.Complexity == model.LevelLow }, 20, "Mostly static content"},
			{shortTimeline, 10, "Quick to ship with hosted tooling"},
			{func(r ArchitectureRequirements) bool { return r.RealTime }, -25, "Real-time features need a backend"},
			{func(r ArchitectureRequirements) bool { return r.Complexity == model.LevelHigh }, -15, "Complex workflows outgrow static generation"},
		},
		pros:  []string{"Fast global delivery", "Cheap hosting"},
		cons:  []string{"Dynamic features depend on third-party APIs"},
		steps: []string{"Choose a static site generator", "Connect a headless CMS", "Deploy to an edge host"},
		hours: 32, complexity: ComplexityLow,
	},
}

// RecommendArchitecturePattern ranks the architecture catalogue.
func RecommendArchitecturePattern(req ArchitectureRequirements) []ScoredRecommendation {
	return scoreOptions(architecturePatterns, req)
}
