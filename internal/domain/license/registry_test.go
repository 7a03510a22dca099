package license

import (
	"testing"
	"time"
)

func mustContext(t *testing.T, plan Plan) *Context {
	t.Helper()
	ctx, err := NewContext(plan)
	if err != nil {
		t.Fatalf("NewContext(%q) error = %v", plan, err)
	}
	return ctx
}

func TestRegistry_Enabled_PlanTable(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name    string
		plan    Plan
		feature Feature
		want    bool
	}{
		{"free has no epics", PlanFree, FeatureEpics, false},
		{"free has no approvers", PlanFree, FeatureMergeRequestApprovers, false},
		{"premium has approvers", PlanPremium, FeatureMergeRequestApprovers, true},
		{"premium has protected environments", PlanPremium, FeatureProtectedEnvironments, true},
		{"premium has no epics", PlanPremium, FeatureEpics, false},
		{"premium has no audit events", PlanPremium, FeatureAuditEvents, false},
		{"ultimate has epics", PlanUltimate, FeatureEpics, true},
		{"ultimate has audit events", PlanUltimate, FeatureAuditEvents, true},
		{"ultimate inherits premium features", PlanUltimate, FeatureMergeTrains, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := mustContext(t, tt.plan)
			if got := registry.Enabled(tt.feature, ctx); got != tt.want {
				t.Errorf("Enabled(%q, %q) = %v, want %v", tt.feature, tt.plan, got, tt.want)
			}
		})
	}
}

func TestRegistry_Enabled_NilContext(t *testing.T) {
	registry := NewRegistry()
	if registry.Enabled(FeatureEpics, nil) {
		t.Error("Enabled with nil context = true, want false")
	}
}

func TestRegistry_Enabled_UnknownFeature(t *testing.T) {
	registry := NewRegistry()
	ctx := mustContext(t, PlanUltimate)
	if registry.Enabled(Feature("does_not_exist"), ctx) {
		t.Error("Enabled with unknown feature = true, want false")
	}
}

func TestRegistry_Enabled_ExpiredLicense(t *testing.T) {
	registry := NewRegistry()
	expired := time.Now().Add(-24 * time.Hour)
	ctx, err := ReconstructContext(PlanUltimate, &expired, nil)
	if err != nil {
		t.Fatalf("ReconstructContext() error = %v", err)
	}

	if registry.Enabled(FeatureEpics, ctx) {
		t.Error("Enabled on expired license = true, want false")
	}
}

func TestRegistry_Enabled_Overrides(t *testing.T) {
	registry := NewRegistry()

	t.Run("override enables a feature the plan lacks", func(t *testing.T) {
		ctx := mustContext(t, PlanFree)
		if err := ctx.SetOverride(FeatureEpics, true); err != nil {
			t.Fatalf("SetOverride() error = %v", err)
		}
		if !registry.Enabled(FeatureEpics, ctx) {
			t.Error("Enabled with enabling override = false, want true")
		}
	})

	t.Run("override disables a feature the plan carries", func(t *testing.T) {
		ctx := mustContext(t, PlanUltimate)
		if err := ctx.SetOverride(FeatureEpics, false); err != nil {
			t.Fatalf("SetOverride() error = %v", err)
		}
		if registry.Enabled(FeatureEpics, ctx) {
			t.Error("Enabled with disabling override = true, want false")
		}
	})

	t.Run("override survives license expiry", func(t *testing.T) {
		expired := time.Now().Add(-time.Hour)
		ctx, err := ReconstructContext(PlanFree, &expired, map[Feature]bool{
			FeatureDeploymentApprovals: true,
		})
		if err != nil {
			t.Fatalf("ReconstructContext() error = %v", err)
		}
		if !registry.Enabled(FeatureDeploymentApprovals, ctx) {
			t.Error("Enabled with override on expired license = false, want true")
		}
	})

	t.Run("override on unknown feature is rejected", func(t *testing.T) {
		ctx := mustContext(t, PlanFree)
		if err := ctx.SetOverride(Feature("bogus"), true); err == nil {
			t.Error("SetOverride with unknown feature error = nil, want error")
		}
	})
}

func TestContext_Expired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry never expires", nil, false},
		{"past expiry is expired", &past, true},
		{"future expiry is not expired", &future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := ReconstructContext(PlanPremium, tt.expiresAt, nil)
			if err != nil {
				t.Fatalf("ReconstructContext() error = %v", err)
			}
			if got := ctx.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewContext_InvalidPlan(t *testing.T) {
	if _, err := NewContext(Plan("platinum")); err == nil {
		t.Error("NewContext with invalid plan error = nil, want error")
	}
}
