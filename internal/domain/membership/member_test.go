package membership

import (
	"errors"
	"testing"
	"time"
)

func TestNewMember_Valid(t *testing.T) {
	member, err := NewMember(1, 10, Developer, StateActive, SourceDirect)
	if err != nil {
		t.Fatalf("NewMember() error = %v, want nil", err)
	}
	if member.ActorID() != 1 {
		t.Errorf("ActorID() = %d, want 1", member.ActorID())
	}
	if member.ResourceID() != 10 {
		t.Errorf("ResourceID() = %d, want 10", member.ResourceID())
	}
	if member.AccessLevel() != Developer {
		t.Errorf("AccessLevel() = %d, want %d", member.AccessLevel(), Developer)
	}
}

func TestNewMember_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		actorID    uint
		resourceID uint
		level      AccessLevel
		state      State
		source     Source
	}{
		{"zero actor", 0, 10, Developer, StateActive, SourceDirect},
		{"zero resource", 1, 0, Developer, StateActive, SourceDirect},
		{"no access level", 1, 10, NoAccess, StateActive, SourceDirect},
		{"invalid level", 1, 10, AccessLevel(25), StateActive, SourceDirect},
		{"invalid state", 1, 10, Developer, State("dormant"), SourceDirect},
		{"invalid source", 1, 10, Developer, StateActive, Source("saml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMember(tt.actorID, tt.resourceID, tt.level, tt.state, tt.source); err == nil {
				t.Error("NewMember() error = nil, want error")
			}
		})
	}
}

func TestMember_IsPending(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"active is not pending", StateActive, false},
		{"awaiting is pending", StateAwaiting, true},
		{"invited is pending", StateInvited, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, err := NewMember(1, 10, Developer, tt.state, SourceDirect)
			if err != nil {
				t.Fatalf("NewMember() error = %v", err)
			}
			if got := member.IsPending(); got != tt.want {
				t.Errorf("IsPending() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMember_IsExplicit(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		level        AccessLevel
		source       Source
		ldapOverride bool
		memberRoleID uint
		want         bool
	}{
		{"plain developer grant", Developer, SourceDirect, false, 0, false},
		{"minimal access grant", MinimalAccess, SourceDirect, false, 0, true},
		{"ldap override", Maintainer, SourceLDAP, true, 0, true},
		{"custom role", Developer, SourceDirect, false, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, err := ReconstructMember(1, 1, 10, tt.level, StateActive, tt.source, tt.ldapOverride, tt.memberRoleID, now, now)
			if err != nil {
				t.Fatalf("ReconstructMember() error = %v", err)
			}
			if got := member.IsExplicit(); got != tt.want {
				t.Errorf("IsExplicit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMember_Approve(t *testing.T) {
	t.Run("awaiting member becomes active", func(t *testing.T) {
		member, err := NewMember(1, 10, Developer, StateAwaiting, SourceDirect)
		if err != nil {
			t.Fatalf("NewMember() error = %v", err)
		}
		if err := member.Approve(); err != nil {
			t.Fatalf("Approve() error = %v, want nil", err)
		}
		if member.State() != StateActive {
			t.Errorf("State() after approve = %q, want %q", member.State(), StateActive)
		}
	})

	t.Run("active member cannot be approved", func(t *testing.T) {
		member, err := NewMember(1, 10, Developer, StateActive, SourceDirect)
		if err != nil {
			t.Fatalf("NewMember() error = %v", err)
		}
		if err := member.Approve(); !errors.Is(err, ErrMemberNotAwaiting) {
			t.Errorf("Approve() error = %v, want ErrMemberNotAwaiting", err)
		}
	})

	t.Run("invited member cannot be approved", func(t *testing.T) {
		member, err := NewMember(1, 10, Developer, StateInvited, SourceDirect)
		if err != nil {
			t.Fatalf("NewMember() error = %v", err)
		}
		if err := member.Approve(); !errors.Is(err, ErrMemberNotAwaiting) {
			t.Errorf("Approve() error = %v, want ErrMemberNotAwaiting", err)
		}
	})
}

func TestMember_SetLDAPOverride(t *testing.T) {
	t.Run("ldap member can be overridden", func(t *testing.T) {
		member, err := NewMember(1, 10, Developer, StateActive, SourceLDAP)
		if err != nil {
			t.Fatalf("NewMember() error = %v", err)
		}
		if err := member.SetLDAPOverride(); err != nil {
			t.Fatalf("SetLDAPOverride() error = %v, want nil", err)
		}
		if !member.LDAPOverride() {
			t.Error("LDAPOverride() = false, want true")
		}
	})

	t.Run("direct member cannot be overridden", func(t *testing.T) {
		member, err := NewMember(1, 10, Developer, StateActive, SourceDirect)
		if err != nil {
			t.Fatalf("NewMember() error = %v", err)
		}
		if err := member.SetLDAPOverride(); err == nil {
			t.Error("SetLDAPOverride() error = nil, want error")
		}
	})
}

func TestAccessLevel_AtLeast(t *testing.T) {
	tests := []struct {
		name      string
		level     AccessLevel
		threshold AccessLevel
		want      bool
	}{
		{"owner at least maintainer", Owner, Maintainer, true},
		{"developer at least developer", Developer, Developer, true},
		{"guest not at least developer", Guest, Developer, false},
		{"minimal access not at least guest", MinimalAccess, Guest, false},
		{"no access not at least minimal", NoAccess, MinimalAccess, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.AtLeast(tt.threshold); got != tt.want {
				t.Errorf("AtLeast(%d) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestParseAccessLevel(t *testing.T) {
	tests := []struct {
		name   string
		value  int
		want   AccessLevel
		wantOK bool
	}{
		{"guest", 10, Guest, true},
		{"developer", 30, Developer, true},
		{"owner", 50, Owner, true},
		{"minimal access", 5, MinimalAccess, true},
		{"unknown value", 25, AccessLevel(25), false},
		{"negative value", -1, AccessLevel(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAccessLevel(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ParseAccessLevel(%d) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseAccessLevel(%d) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
