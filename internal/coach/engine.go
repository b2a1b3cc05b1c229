package coach

// Engine runs all registered rules against a SessionContext and collects the
// resulting recommendations.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			ScoreTier,
			DepthRange,
			Asymmetry,
			BodyAlignment,
			TorsoLean,
			KneeTracking,
			ShortHold,
			Inconsistency,
		},
	}
}

// NewEngineWithRules creates an engine with a custom rule list.
func NewEngineWithRules(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Run executes every rule and returns the recommendations ranked most
// urgent first.
func (e *Engine) Run(ctx *SessionContext) []Recommendation {
	var all []Recommendation
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return Rank(all)
}
