package license

import "time"

// Context carries the licensing state for one namespace. It is an explicit
// value handed into every feature check rather than ambient process state, so
// authorization stays pure and independently testable per request.
type Context struct {
	plan      Plan
	expiresAt *time.Time
	overrides map[Feature]bool
}

// NewContext creates a licensing context for the given plan.
func NewContext(plan Plan) (*Context, error) {
	if !plan.IsValid() {
		return nil, ErrInvalidPlan(plan)
	}
	return &Context{
		plan:      plan,
		overrides: make(map[Feature]bool),
	}, nil
}

// ReconstructContext reconstructs a licensing context from persistence.
func ReconstructContext(plan Plan, expiresAt *time.Time, overrides map[Feature]bool) (*Context, error) {
	if !plan.IsValid() {
		return nil, ErrInvalidPlan(plan)
	}
	if overrides == nil {
		overrides = make(map[Feature]bool)
	}
	return &Context{
		plan:      plan,
		expiresAt: expiresAt,
		overrides: overrides,
	}, nil
}

// Plan returns the subscription plan
func (c *Context) Plan() Plan {
	return c.plan
}

// ExpiresAt returns the license expiry, nil meaning no expiry
func (c *Context) ExpiresAt() *time.Time {
	return c.expiresAt
}

// Expired reports whether the license has lapsed. Plan features of an expired
// license are unavailable; explicit overrides still apply.
func (c *Context) Expired() bool {
	if c.expiresAt == nil {
		return false
	}
	return time.Now().After(*c.expiresAt)
}

// Override returns the explicit setting for a feature, if any.
func (c *Context) Override(f Feature) (enabled, ok bool) {
	enabled, ok = c.overrides[f]
	return enabled, ok
}

// SetOverride pins a feature on or off regardless of plan. This is the
// operational escape hatch for trials and per-namespace toggles.
func (c *Context) SetOverride(f Feature, enabled bool) error {
	if !f.IsValid() {
		return ErrUnknownFeature(f)
	}
	c.overrides[f] = enabled
	return nil
}
