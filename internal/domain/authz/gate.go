package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
)

// ProtectionCheck evaluates the resource's protection rules for the already
// resolved access level. It runs last, only after visibility, feature, and
// role checks have passed.
type ProtectionCheck func(level membership.AccessLevel) protection.Verdict

// Gate composes the role resolver, the feature registry, and protection rule
// evaluation into one authorize call. Every decision is a stateless read;
// the gate is safe for unbounded concurrent use.
type Gate struct {
	resolver *membership.Resolver
	registry *license.Registry
}

// NewGate creates an entitlement gate.
func NewGate(resolver *membership.Resolver, registry *license.Registry) *Gate {
	return &Gate{
		resolver: resolver,
		registry: registry,
	}
}

// Authorize decides whether the actor may perform the action against the
// resource. The check order is load-bearing and must not be rearranged:
//
//  1. existence and read visibility — private resources answer 404 to
//     non-members, never 403, so their existence does not leak;
//  2. plan feature — a disabled feature hides, forbids, or falls back
//     according to the action's own policy;
//  3. role sufficiency — 403;
//  4. protection rules — 403, 409 on stale SHA, 422 on wrong-state retries,
//     400 on an ambiguous approval needing represented_as.
//
// This ordering guarantees feature-gating and protection state are never
// revealed to actors who should not even see the resource.
func (g *Gate) Authorize(ctx context.Context, actor *membership.Actor, action Action, res *resource.Resource, check ProtectionCheck) (Decision, error) {
	if res == nil {
		return Deny(ReasonHidden, "404 Not Found"), nil
	}

	resolution, err := g.resolver.EffectiveLevel(ctx, actor, res, action.Mutating)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to resolve role: %w", err)
	}

	// Step 1: visibility. Anonymous actors get 401 only on non-hidden
	// resources; hidden resources stay hidden.
	if res.Visibility() == resource.VisibilityPrivate && !resolution.HasMembership {
		return Deny(ReasonHidden, "404 Not Found"), nil
	}
	if actor == nil {
		return Deny(ReasonUnauthenticated, "401 Unauthorized"), nil
	}

	// Step 2: plan feature.
	fallback := false
	if action.IsFeatureGated() && !g.registry.Enabled(action.Feature, res.Licensing()) {
		switch action.Policy {
		case license.GatePolicyNotFound:
			return Deny(ReasonHidden, "404 Not Found"), nil
		case license.GatePolicyForbidden:
			return Deny(ReasonFeatureDisabled, fmt.Sprintf("feature not available: %s", action.Feature)), nil
		case license.GatePolicySilentFallback:
			fallback = true
		}
	}

	// Step 3: role sufficiency. Admins resolved to Owner above.
	if !resolution.Level.AtLeast(action.MinLevel) {
		return Deny(ReasonInsufficientRole, "403 Forbidden"), nil
	}

	// Step 4: protection rules.
	if check != nil {
		verdict := check(resolution.Level)
		if !verdict.Allowed {
			return protectionDecision(verdict), nil
		}
	}

	if fallback {
		return AllowWithFallback(), nil
	}
	return Allow(), nil
}

// protectionDecision maps a protection verdict onto a decision.
func protectionDecision(v protection.Verdict) Decision {
	if v.ApprovalsLeft > 0 {
		d := Deny(ReasonApprovalRequired, "deployment approvals outstanding")
		d.ApprovalsLeft = v.ApprovalsLeft
		return d
	}

	switch {
	case errors.Is(v.Reason, protection.ErrSHAMismatch):
		return Deny(ReasonStateConflict, v.Reason.Error())
	case errors.Is(v.Reason, protection.ErrCheckNotFailed):
		return Deny(ReasonInvalidState, v.Reason.Error())
	case errors.Is(v.Reason, protection.ErrAmbiguousRepresentation):
		// The request is incomplete, not forbidden: represented_as is needed
		// to pick between several qualifying groups.
		return Deny(ReasonMalformedInput, v.Reason.Error())
	case v.Reason != nil:
		return Deny(ReasonProtectionDenied, v.Reason.Error())
	default:
		return Deny(ReasonProtectionDenied, "403 Forbidden")
	}
}
