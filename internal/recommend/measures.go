package recommend

import "launchhub/internal/model"

// PerformanceContext drives performance optimisation recommendations.
type PerformanceContext struct {
	ExpectedUsers  int  `json:"expectedUsers"`
	DataIntensive  bool `json:"dataIntensive"`
	RealTime       bool `json:"realTime"`
	GlobalAudience bool `json:"globalAudience"`
	MediaHeavy     bool `json:"mediaHeavy"`
}

var performanceOptimizations = []option[PerformanceContext]{
	{
		name: "Content Delivery Network", base: 40,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.GlobalAudience }, 35, "Global audience needs edge caching"},
			{func(c PerformanceContext) bool { return c.MediaHeavy }, 20, "Media assets dominate page weight"},
		},
		pros: []string{"Lower latency worldwide"}, cons: []string{"Cache invalidation to manage"},
		steps: []string{"Serve static assets from a CDN", "Set cache headers", "Purge on deploy"},
		hours: 8, complexity: ComplexityLow,
	},
	{
		name: "Application Caching", base: 45,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.ExpectedUsers > 10_000 }, 25, "Repeated reads at scale"},
			{func(c PerformanceContext) bool { return c.DataIntensive }, 15, "Expensive queries benefit from caching"},
		},
		pros: []string{"Offloads the database"}, cons: []string{"Stale data risk"},
		steps: []string{"Add a Redis cache", "Cache hot queries with TTLs", "Invalidate on writes"},
		hours: 16, complexity: ComplexityMedium,
	},
	{
		name: "Database Indexing", base: 50,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.DataIntensive }, 30, "Data-intensive workload"},
			{func(c PerformanceContext) bool { return c.ExpectedUsers > 100_000 }, 10, "Query volume grows with users"},
		},
		pros: []string{"Large gains for little effort"}, cons: []string{"Slower writes with many indexes"},
		steps: []string{"Capture slow query log", "Add covering indexes", "Review query plans"},
		hours: 8, complexity: ComplexityLow,
	},
	{
		name: "Lazy Loading and Code Splitting", base: 45,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.MediaHeavy }, 25, "Defer offscreen media"},
			{func(c PerformanceContext) bool { return c.GlobalAudience }, 10, "Smaller bundles help slow networks"},
		},
		pros: []string{"Faster first paint"}, cons: []string{"More loading states to design"},
		steps: []string{"Split routes into chunks", "Lazy load images", "Measure with Lighthouse"},
		hours: 12, complexity: ComplexityLow,
	},
	{
		name: "Horizontal Scaling", base: 30,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.ExpectedUsers > 100_000 }, 40, "Traffic exceeds a single instance"},
			{func(c PerformanceContext) bool { return c.RealTime }, 15, "Connection counts grow with users"},
		},
		pros: []string{"Elastic capacity"}, cons: []string{"Requires stateless services"},
		steps: []string{"Make services stateless", "Add autoscaling rules", "Load test"},
		hours: 40, complexity: ComplexityHigh,
	},
	{
		name: "WebSocket Connection Pooling", base: 20,
		rules: []rule[PerformanceContext]{
			{func(c PerformanceContext) bool { return c.RealTime }, 50, "Real-time features keep connections open"},
		},
		pros: []string{"Efficient push updates"}, cons: []string{"Sticky sessions or a pub/sub backbone needed"},
		steps: []string{"Introduce a pub/sub layer", "Share connections across workers", "Monitor connection counts"},
		hours: 24, complexity: ComplexityMedium,
	},
}

// IdentifyPerformanceOptimizations ranks the performance catalogue.
func IdentifyPerformanceOptimizations(ctx PerformanceContext) []ScoredRecommendation {
	return scoreOptions(performanceOptimizations, ctx)
}

// SecurityContext drives security recommendations.
type SecurityContext struct {
	HandlesPayments bool     `json:"handlesPayments"`
	HandlesPII      bool     `json:"handlesPII"`
	UserAccounts    bool     `json:"userAccounts"`
	Compliance      []string `json:"compliance,omitempty"`
	PublicAPI       bool     `json:"publicApi"`
}

func (c SecurityContext) requires(framework string) bool {
	for _, f := range c.Compliance {
		if f == framework {
			return true
		}
	}
	return false
}

var securityMeasures = []option[SecurityContext]{
	{
		name: "Encryption at Rest and in Transit", base: 60,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return c.HandlesPII }, 25, "Personal data must be encrypted"},
			{func(c SecurityContext) bool { return c.requires("HIPAA") || c.requires("GDPR") }, 15, "Required by declared compliance"},
		},
		pros: []string{"Baseline protection"}, cons: []string{"Key management overhead"},
		steps: []string{"Enforce TLS everywhere", "Enable storage encryption", "Rotate keys"},
		hours: 16, complexity: ComplexityMedium,
	},
	{
		name: "Multi-Factor Authentication", base: 35,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return c.UserAccounts }, 30, "User accounts are an attack surface"},
			{func(c SecurityContext) bool { return c.HandlesPayments }, 20, "Payment actions need step-up auth"},
		},
		pros: []string{"Blocks credential stuffing"}, cons: []string{"Login friction"},
		steps: []string{"Add TOTP enrolment", "Require MFA for sensitive actions", "Provide recovery codes"},
		hours: 24, complexity: ComplexityMedium,
	},
	{
		name: "PCI-DSS Compliant Payment Provider", base: 10,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return c.HandlesPayments }, 80, "Card data should never touch your servers"},
		},
		pros: []string{"Shrinks compliance scope"}, cons: []string{"Provider fees"},
		steps: []string{"Integrate hosted checkout", "Tokenise payment methods", "Complete SAQ A"},
		hours: 32, complexity: ComplexityMedium,
	},
	{
		name: "Web Application Firewall and Rate Limiting", base: 40,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return c.PublicAPI }, 30, "Public endpoints attract abuse"},
			{func(c SecurityContext) bool { return c.UserAccounts }, 10, "Protect login endpoints"},
		},
		pros: []string{"Mitigates common attacks"}, cons: []string{"False positives to tune"},
		steps: []string{"Enable managed WAF rules", "Rate limit auth endpoints", "Alert on spikes"},
		hours: 12, complexity: ComplexityLow,
	},
	{
		name: "Audit Logging", base: 35,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return len(c.Compliance) > 0 }, 35, "Compliance frameworks require audit trails"},
			{func(c SecurityContext) bool { return c.HandlesPII }, 10, "Track access to personal data"},
		},
		pros: []string{"Forensics and accountability"}, cons: []string{"Storage growth"},
		steps: []string{"Log security-relevant events", "Ship logs to immutable storage", "Define retention"},
		hours: 16, complexity: ComplexityLow,
	},
	{
		name: "Penetration Testing", base: 30,
		rules: []rule[SecurityContext]{
			{func(c SecurityContext) bool { return c.HandlesPayments || c.HandlesPII }, 25, "Sensitive data warrants external testing"},
			{func(c SecurityContext) bool { return c.requires("SOC2") }, 20, "SOC 2 auditors expect it"},
		},
		pros: []string{"Finds issues before attackers"}, cons: []string{"Costly engagements"},
		steps: []string{"Scope the engagement", "Fix findings", "Retest"},
		hours: 40, complexity: ComplexityHigh,
	},
}

// RecommendSecurityMeasures ranks the security catalogue.
func RecommendSecurityMeasures(ctx SecurityContext) []ScoredRecommendation {
	return scoreOptions(securityMeasures, ctx)
}

// CostContext drives cost optimisation recommendations.
type CostContext struct {
	Budget          Rating `json:"budget"`
	ExpectedUsers   int    `json:"expectedUsers"`
	PredictableLoad bool   `json:"predictableLoad"`
	Infrastructure  string `json:"infrastructure,omitempty"`
}

func budgetLevel(c CostContext) model.Level {
	if !c.Budget.Valid() {
		return model.LevelMedium
	}
	return levelFromRating(c.Budget)
}

var costOptimizations = []option[CostContext]{
	{
		name: "Reserved Instances or Savings Plans", base: 30,
		rules: []rule[CostContext]{
			{func(c CostContext) bool { return c.PredictableLoad }, 35, "Predictable load can be committed"},
			{func(c CostContext) bool { return c.ExpectedUsers > 50_000 }, 15, "Large steady baseline"},
		},
		pros: []string{"Up to 70% off on-demand pricing"}, cons: []string{"Commitment term"},
		steps: []string{"Measure baseline usage", "Purchase one-year commitments", "Review quarterly"},
		hours: 4, complexity: ComplexityLow,
	},
	{
		name: "Auto-Scaling", base: 45,
		rules: []rule[CostContext]{
			{func(c CostContext) bool { return !c.PredictableLoad }, 25, "Variable load wastes fixed capacity"},
			{func(c CostContext) bool { return c.ExpectedUsers > 10_000 }, 10, "Enough traffic to vary"},
		},
		pros: []string{"Pay for what you use"}, cons: []string{"Scaling lag"},
		steps: []string{"Define scaling metrics", "Set min/max capacity", "Load test scale-out"},
		hours: 16, complexity: ComplexityMedium,
	},
	{
		name: "Serverless Functions for Spiky Workloads", base: 35,
		rules: []rule[CostContext]{
			{func(c CostContext) bool { return budgetLevel(c) == model.LevelLow }, 30, "Scale-to-zero suits a tight budget"},
			{func(c CostContext) bool { return c.ExpectedUsers > 0 && c.ExpectedUsers <= 10_000 }, 15, "Low traffic stays cheap"},
		},
		pros: []string{"No idle cost"}, cons: []string{"Cost grows steeply at high volume"},
		steps: []string{"Move batch jobs to functions", "Set concurrency limits", "Monitor invocations"},
		hours: 24, complexity: ComplexityMedium,
	},
	{
		name: "Managed Services over Self-Hosting", base: 50,
		rules: []rule[CostContext]{
			{func(c CostContext) bool { return budgetLevel(c) != model.LevelHigh }, 15, "Operations staff cost more than managed fees"},
		},
		pros: []string{"Less operational toil"}, cons: []string{"Higher unit price"},
		steps: []string{"Inventory self-hosted components", "Migrate databases to managed offerings"},
		hours: 20, complexity: ComplexityMedium,
	},
	{
		name: "Spot or Preemptible Instances", base: 20,
		rules: []rule[CostContext]{
			{func(c CostContext) bool { return budgetLevel(c) == model.LevelLow }, 25, "Deep discounts for interruptible work"},
			{func(c CostContext) bool { return c.PredictableLoad }, -10, "Steady load is better served by reservations"},
		},
		pros: []string{"Up to 90% cheaper"}, cons: []string{"Instances can be reclaimed"},
		steps: []string{"Identify interruptible workloads", "Configure spot fleets", "Handle termination notices"},
		hours: 16, complexity: ComplexityHigh,
	},
}

// IdentifyCostOptimizations ranks the cost catalogue.
func IdentifyCostOptimizations(ctx CostContext) []ScoredRecommendation {
	return scoreOptions(costOptimizations, ctx)
}
