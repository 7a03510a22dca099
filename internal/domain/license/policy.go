package license

// GatePolicy names what the boundary does when an action's governing feature
// is disabled. The split is deliberately per-action: some endpoints hide the
// resource entirely, some reveal the gate, and some silently fall back to a
// default instead of erroring.
type GatePolicy string

const (
	// GatePolicyNotFound hides the resource's existence (404). Used wherever
	// an unlicensed feature must not leak that the resource exists.
	GatePolicyNotFound GatePolicy = "not_found"
	// GatePolicyForbidden reveals the gate (403).
	GatePolicyForbidden GatePolicy = "forbidden"
	// GatePolicySilentFallback ignores the gated parameter and applies the
	// default instead of failing the request.
	GatePolicySilentFallback GatePolicy = "silent_fallback"
)

// IsValid checks if the gate policy is valid
func (p GatePolicy) IsValid() bool {
	switch p {
	case GatePolicyNotFound, GatePolicyForbidden, GatePolicySilentFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation of the gate policy
func (p GatePolicy) String() string {
	return string(p)
}
