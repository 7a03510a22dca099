package authz

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
)

type fakeMemberRepo struct {
	membership.Repository
	grants map[uint][]*membership.Member
}

func (f *fakeMemberRepo) GetByActorAndResources(_ context.Context, actorID uint, resourceIDs []uint) ([]*membership.Member, error) {
	wanted := make(map[uint]struct{}, len(resourceIDs))
	for _, id := range resourceIDs {
		wanted[id] = struct{}{}
	}
	var out []*membership.Member
	for _, m := range f.grants[actorID] {
		if _, ok := wanted[m.ResourceID()]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func newGate(t *testing.T, grants map[uint][]*membership.Member) *Gate {
	t.Helper()
	registry := license.NewRegistry()
	resolver := membership.NewResolver(&fakeMemberRepo{grants: grants}, registry)
	return NewGate(resolver, registry)
}

func member(t *testing.T, id, actorID, resourceID uint, level membership.AccessLevel, state membership.State) *membership.Member {
	t.Helper()
	now := time.Now()
	m, err := membership.ReconstructMember(id, actorID, resourceID, level, state, membership.SourceDirect, false, 0, now, now)
	if err != nil {
		t.Fatalf("ReconstructMember() error = %v", err)
	}
	return m
}

func project(t *testing.T, visibility resource.Visibility, plan license.Plan) *resource.Resource {
	t.Helper()
	ctx, err := license.NewContext(plan)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	res, err := resource.New(1, resource.KindProject, "proj", visibility, 0, nil, ctx)
	if err != nil {
		t.Fatalf("resource.New() error = %v", err)
	}
	return res
}

func actor(t *testing.T, id uint, admin bool) *membership.Actor {
	t.Helper()
	a, err := membership.NewActor(id, "someone", admin)
	if err != nil {
		t.Fatalf("NewActor() error = %v", err)
	}
	return a
}

func TestGate_Authorize_Visibility(t *testing.T) {
	t.Run("missing resource is hidden", func(t *testing.T) {
		gate := newGate(t, nil)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadProject, nil, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Allowed || d.Reason != ReasonHidden {
			t.Errorf("Authorize() = %+v, want hidden", d)
		}
		if d.HTTPStatus() != http.StatusNotFound {
			t.Errorf("HTTPStatus() = %d, want 404", d.HTTPStatus())
		}
	})

	t.Run("private resource answers 404 to non-members, never 403", func(t *testing.T) {
		gate := newGate(t, nil)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadProject, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonHidden || d.HTTPStatus() != http.StatusNotFound {
			t.Errorf("Authorize() = %+v (status %d), want hidden 404", d, d.HTTPStatus())
		}
	})

	t.Run("private resource hides from anonymous actors too", func(t *testing.T) {
		gate := newGate(t, nil)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), nil, ActionReadProject, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonHidden {
			t.Errorf("Authorize() reason = %q, want hidden", d.Reason)
		}
	})

	t.Run("anonymous actor on a visible resource gets 401", func(t *testing.T) {
		gate := newGate(t, nil)
		res := project(t, resource.VisibilityPublic, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), nil, ActionReadProject, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonUnauthenticated || d.HTTPStatus() != http.StatusUnauthorized {
			t.Errorf("Authorize() = %+v (status %d), want unauthenticated 401", d, d.HTTPStatus())
		}
	})

	t.Run("member passes the visibility check", func(t *testing.T) {
		grants := map[uint][]*membership.Member{
			7: {member(t, 1, 7, 1, membership.Guest, membership.StateActive)},
		}
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadProject, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if !d.Allowed {
			t.Errorf("Authorize() = %+v, want allowed", d)
		}
	})
}

func TestGate_Authorize_FeaturePolicy(t *testing.T) {
	grants := map[uint][]*membership.Member{
		7: {member(t, 1, 7, 1, membership.Owner, membership.StateActive)},
	}

	t.Run("not-found policy hides the feature", func(t *testing.T) {
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanFree)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadEpic, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonHidden || d.HTTPStatus() != http.StatusNotFound {
			t.Errorf("Authorize() = %+v (status %d), want hidden 404", d, d.HTTPStatus())
		}
	})

	t.Run("forbidden policy answers 403", func(t *testing.T) {
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanFree)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadAuditEvents, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonFeatureDisabled || d.HTTPStatus() != http.StatusForbidden {
			t.Errorf("Authorize() = %+v (status %d), want feature disabled 403", d, d.HTTPStatus())
		}
	})

	t.Run("silent fallback allows and flags the decision", func(t *testing.T) {
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanFree)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionRestrictDefaultBranchProtection, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if !d.Allowed || !d.FallbackApplied {
			t.Errorf("Authorize() = %+v, want allowed with fallback applied", d)
		}
	})

	t.Run("merge trains hide on unlicensed plans", func(t *testing.T) {
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanFree)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionAddToMergeTrain, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonHidden || d.HTTPStatus() != http.StatusNotFound {
			t.Errorf("Authorize() = %+v (status %d), want hidden 404", d, d.HTTPStatus())
		}
	})

	t.Run("licensed feature passes", func(t *testing.T) {
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionReadEpic, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if !d.Allowed || d.FallbackApplied {
			t.Errorf("Authorize() = %+v, want plain allow", d)
		}
	})

	t.Run("feature check runs before the role check", func(t *testing.T) {
		// A guest lacking the role still sees 404, not 403: the feature's
		// absence must not reveal the endpoint exists.
		guestGrants := map[uint][]*membership.Member{
			7: {member(t, 1, 7, 1, membership.Guest, membership.StateActive)},
		}
		gate := newGate(t, guestGrants)
		res := project(t, resource.VisibilityPrivate, license.PlanFree)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionProtectEnvironment, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonHidden {
			t.Errorf("Authorize() reason = %q, want hidden", d.Reason)
		}
	})
}

func TestGate_Authorize_Role(t *testing.T) {
	t.Run("insufficient role answers 403", func(t *testing.T) {
		grants := map[uint][]*membership.Member{
			7: {member(t, 1, 7, 1, membership.Developer, membership.StateActive)},
		}
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionProtectBranch, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonInsufficientRole || d.HTTPStatus() != http.StatusForbidden {
			t.Errorf("Authorize() = %+v (status %d), want insufficient role 403", d, d.HTTPStatus())
		}
	})

	t.Run("admin bypasses the role check", func(t *testing.T) {
		gate := newGate(t, nil)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 99, true), ActionProtectBranch, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if !d.Allowed {
			t.Errorf("Authorize() = %+v, want allowed for admin", d)
		}
	})

	t.Run("merge needs developer access", func(t *testing.T) {
		grants := map[uint][]*membership.Member{
			7: {member(t, 1, 7, 1, membership.Reporter, membership.StateActive)},
		}
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionMergeMergeRequest, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonInsufficientRole {
			t.Errorf("Authorize() reason = %q, want insufficient role", d.Reason)
		}
	})

	t.Run("awaiting member cannot mutate", func(t *testing.T) {
		grants := map[uint][]*membership.Member{
			7: {member(t, 1, 7, 1, membership.Maintainer, membership.StateAwaiting)},
		}
		gate := newGate(t, grants)
		res := project(t, resource.VisibilityPrivate, license.PlanUltimate)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionPushCommit, res, nil)
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if d.Reason != ReasonInsufficientRole {
			t.Errorf("Authorize() reason = %q, want insufficient role", d.Reason)
		}
	})
}

func TestGate_Authorize_Protection(t *testing.T) {
	grants := map[uint][]*membership.Member{
		7: {member(t, 1, 7, 1, membership.Maintainer, membership.StateActive)},
	}
	res := project(t, resource.VisibilityPrivate, license.PlanUltimate)

	tests := []struct {
		name       string
		verdict    protection.Verdict
		wantReason Reason
		wantStatus int
		wantLeft   int
	}{
		{
			name:       "denied entry answers 403",
			verdict:    protection.Verdict{Reason: protection.ErrNotEligibleApprover},
			wantReason: ReasonProtectionDenied,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "stale sha answers 409",
			verdict:    protection.Verdict{Reason: protection.ErrSHAMismatch},
			wantReason: ReasonStateConflict,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "wrong-state retry answers 422",
			verdict:    protection.Verdict{Reason: protection.ErrCheckNotFailed},
			wantReason: ReasonInvalidState,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "ambiguous representation answers 400",
			verdict:    protection.Verdict{Reason: protection.ErrAmbiguousRepresentation},
			wantReason: ReasonMalformedInput,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "outstanding approvals carry the count",
			verdict:    protection.Verdict{ApprovalsLeft: 2},
			wantReason: ReasonApprovalRequired,
			wantStatus: http.StatusForbidden,
			wantLeft:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newGate(t, grants)
			d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionPushCommit, res, func(membership.AccessLevel) protection.Verdict {
				return tt.verdict
			})
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Authorize() reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.HTTPStatus() != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", d.HTTPStatus(), tt.wantStatus)
			}
			if d.ApprovalsLeft != tt.wantLeft {
				t.Errorf("ApprovalsLeft = %d, want %d", d.ApprovalsLeft, tt.wantLeft)
			}
		})
	}

	t.Run("allowing verdict passes through", func(t *testing.T) {
		gate := newGate(t, grants)
		d, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionPushCommit, res, func(membership.AccessLevel) protection.Verdict {
			return protection.Verdict{Allowed: true}
		})
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if !d.Allowed {
			t.Errorf("Authorize() = %+v, want allowed", d)
		}
	})

	t.Run("protection check receives the resolved level", func(t *testing.T) {
		gate := newGate(t, grants)
		var seen membership.AccessLevel
		_, err := gate.Authorize(context.Background(), actor(t, 7, false), ActionPushCommit, res, func(level membership.AccessLevel) protection.Verdict {
			seen = level
			return protection.Verdict{Allowed: true}
		})
		if err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
		if seen != membership.Maintainer {
			t.Errorf("protection check saw level %d, want Maintainer", seen)
		}
	})
}
