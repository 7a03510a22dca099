package license

// Registry answers feature availability questions. Lookups are pure reads
// with no side effects and are safe for concurrent use.
type Registry struct {
	planFeatures map[Plan]map[Feature]struct{}
}

// NewRegistry creates a registry with the default plan feature table.
func NewRegistry() *Registry {
	return NewRegistryWithTable(DefaultPlanFeatures())
}

// NewRegistryWithTable creates a registry with a custom plan feature table.
func NewRegistryWithTable(table map[Plan][]Feature) *Registry {
	planFeatures := make(map[Plan]map[Feature]struct{}, len(table))
	for plan, features := range table {
		set := make(map[Feature]struct{}, len(features))
		for _, f := range features {
			set[f] = struct{}{}
		}
		planFeatures[plan] = set
	}
	return &Registry{planFeatures: planFeatures}
}

// Enabled reports whether the feature is available in the given licensing
// context. A nil context, an unknown feature, or an absent flag all mean
// unavailable.
func (r *Registry) Enabled(feature Feature, ctx *Context) bool {
	if ctx == nil || !feature.IsValid() {
		return false
	}

	// Explicit overrides win over the plan table, even on expired licenses.
	if enabled, ok := ctx.Override(feature); ok {
		return enabled
	}

	if ctx.Expired() {
		return false
	}

	set, ok := r.planFeatures[ctx.Plan()]
	if !ok {
		return false
	}
	_, ok = set[feature]
	return ok
}
