// Package membership provides role-based access control: ordered access
// levels, membership records with lifecycle states, and the resolver that
// computes an actor's effective level for a resource.
package membership

// AccessLevel is the ordered role scale. Higher levels imply all permissions
// of lower levels unless a protection rule overrides this for a specific
// resource.
type AccessLevel int

const (
	NoAccess AccessLevel = 0
	// MinimalAccess is weaker than Guest and only assignable on top-level
	// groups when its gating feature is licensed.
	MinimalAccess AccessLevel = 5
	Guest         AccessLevel = 10
	Reporter      AccessLevel = 20
	Developer     AccessLevel = 30
	Maintainer    AccessLevel = 40
	Owner         AccessLevel = 50
)

// IsValid checks if the access level is one of the defined levels
func (l AccessLevel) IsValid() bool {
	switch l {
	case NoAccess, MinimalAccess, Guest, Reporter, Developer, Maintainer, Owner:
		return true
	default:
		return false
	}
}

// String returns the string representation of the access level
func (l AccessLevel) String() string {
	switch l {
	case NoAccess:
		return "no_access"
	case MinimalAccess:
		return "minimal_access"
	case Guest:
		return "guest"
	case Reporter:
		return "reporter"
	case Developer:
		return "developer"
	case Maintainer:
		return "maintainer"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}

// AtLeast reports whether the level satisfies the required minimum.
func (l AccessLevel) AtLeast(required AccessLevel) bool {
	return l >= required
}

// ParseAccessLevel converts a numeric value to an AccessLevel, rejecting
// values outside the defined scale.
func ParseAccessLevel(v int) (AccessLevel, bool) {
	l := AccessLevel(v)
	return l, l.IsValid()
}
