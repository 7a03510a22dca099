// Package authz composes role resolution, plan feature gating, and
// protection rule evaluation into a single authorize call with a fixed,
// load-bearing check order.
package authz

import "net/http"

// Reason is the tagged variant explaining a decision.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonHidden           Reason = "hidden"
	ReasonFeatureDisabled  Reason = "feature_disabled"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonProtectionDenied Reason = "protection_denied"
	ReasonApprovalRequired Reason = "approval_required"
	ReasonStateConflict    Reason = "state_conflict"
	ReasonInvalidState     Reason = "invalid_state"
	ReasonMalformedInput   Reason = "malformed_input"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
	// ApprovalsLeft carries the outstanding approval count when the reason
	// is ReasonApprovalRequired.
	ApprovalsLeft int
	// FallbackApplied is set when a feature-gated parameter was silently
	// ignored rather than rejected.
	FallbackApplied bool
}

// Allow builds an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true, Reason: ReasonOK}
}

// AllowWithFallback builds an allowing decision that notes a gated parameter
// was dropped.
func AllowWithFallback() Decision {
	return Decision{Allowed: true, Reason: ReasonOK, FallbackApplied: true}
}

// Deny builds a denying decision.
func Deny(reason Reason, message string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: message}
}

// HTTPStatus maps the decision onto the boundary's status contract. Hidden
// resources and hidden features both surface as 404 so existence never leaks.
func (d Decision) HTTPStatus() int {
	if d.Allowed {
		return http.StatusOK
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonHidden:
		return http.StatusNotFound
	case ReasonFeatureDisabled:
		return http.StatusForbidden
	case ReasonInsufficientRole, ReasonProtectionDenied, ReasonApprovalRequired:
		return http.StatusForbidden
	case ReasonStateConflict:
		return http.StatusConflict
	case ReasonInvalidState:
		return http.StatusUnprocessableEntity
	case ReasonMalformedInput:
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}
