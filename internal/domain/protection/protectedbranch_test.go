package protection

import (
	"errors"
	"testing"
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

func roleEntry(t *testing.T, id uint, level membership.AccessLevel) *AccessEntry {
	t.Helper()
	e, err := ReconstructAccessEntry(id, EntryKindRole, level, 0, 0, GroupInheritanceDefault)
	if err != nil {
		t.Fatalf("ReconstructAccessEntry() error = %v", err)
	}
	return e
}

func userEntry(t *testing.T, id, userID uint) *AccessEntry {
	t.Helper()
	e, err := ReconstructAccessEntry(id, EntryKindUser, 0, userID, 0, GroupInheritanceDefault)
	if err != nil {
		t.Fatalf("ReconstructAccessEntry() error = %v", err)
	}
	return e
}

func groupEntry(t *testing.T, id, groupID uint) *AccessEntry {
	t.Helper()
	e, err := ReconstructAccessEntry(id, EntryKindGroup, 0, 0, groupID, GroupInheritanceDefault)
	if err != nil {
		t.Fatalf("ReconstructAccessEntry() error = %v", err)
	}
	return e
}

func branch(t *testing.T, id uint, name string, scope ScopeKind, pushEntries, mergeEntries []*AccessEntry) *ProtectedBranch {
	t.Helper()
	now := time.Now()
	b, err := ReconstructProtectedBranch(id, name, scope, 1, pushEntries, mergeEntries, now, now)
	if err != nil {
		t.Fatalf("ReconstructProtectedBranch() error = %v", err)
	}
	return b
}

func TestNewProtectedBranch_Validation(t *testing.T) {
	push := []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}

	tests := []struct {
		name        string
		branchName  string
		scope       ScopeKind
		scopeID     uint
		pushEntries []*AccessEntry
		wantErr     error
	}{
		{"empty name", "", ScopeProject, 1, push, ErrBranchNameRequired},
		{"no push entries", "main", ScopeProject, 1, nil, ErrAccessEntriesTooShort},
		{"zero scope id", "main", ScopeProject, 0, push, nil},
		{"invalid scope", "main", ScopeKind("global"), 1, push, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProtectedBranch(tt.branchName, tt.scope, tt.scopeID, tt.pushEntries, nil)
			if err == nil {
				t.Fatal("NewProtectedBranch() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("NewProtectedBranch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProtectedBranch_Matches(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		branchName string
		want       bool
	}{
		{"exact match", "main", "main", true},
		{"exact mismatch", "main", "master", false},
		{"trailing wildcard matches", "release-*", "release-1.0", true},
		{"trailing wildcard matches empty run", "release-*", "release-", true},
		{"trailing wildcard mismatch", "release-*", "hotfix-1.0", false},
		{"leading wildcard matches", "*-stable", "v2-stable", true},
		{"leading wildcard mismatch", "*-stable", "v2-canary", false},
		{"middle wildcard matches", "release-*-hotfix", "release-1.0-hotfix", true},
		{"middle wildcard mismatch suffix", "release-*-hotfix", "release-1.0-final", false},
		{"bare star matches everything", "*", "anything/at/all", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := branch(t, 1, tt.pattern, ScopeProject, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil)
			if got := b.Matches(tt.branchName); got != tt.want {
				t.Errorf("Matches(%q) with pattern %q = %v, want %v", tt.branchName, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestProtectedBranch_ReplacePushEntries(t *testing.T) {
	b := branch(t, 1, "main", ScopeProject, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil)

	t.Run("empty replacement is rejected", func(t *testing.T) {
		if err := b.ReplacePushEntries(nil); !errors.Is(err, ErrAccessEntriesTooShort) {
			t.Errorf("ReplacePushEntries(nil) error = %v, want ErrAccessEntriesTooShort", err)
		}
	})

	t.Run("non-empty replacement succeeds", func(t *testing.T) {
		entries := []*AccessEntry{roleEntry(t, 2, membership.Developer)}
		if err := b.ReplacePushEntries(entries); err != nil {
			t.Fatalf("ReplacePushEntries() error = %v", err)
		}
		if len(b.PushEntries()) != 1 || b.PushEntries()[0].AccessLevel() != membership.Developer {
			t.Errorf("PushEntries() = %+v, want single developer entry", b.PushEntries())
		}
	})
}

func TestProtectedBranch_RemovePushEntry(t *testing.T) {
	t.Run("removing the last entry is rejected", func(t *testing.T) {
		b := branch(t, 1, "main", ScopeProject, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil)
		if err := b.RemovePushEntry(1); !errors.Is(err, ErrAccessEntriesTooShort) {
			t.Errorf("RemovePushEntry() error = %v, want ErrAccessEntriesTooShort", err)
		}
	})

	t.Run("removing a known entry succeeds", func(t *testing.T) {
		b := branch(t, 1, "main", ScopeProject, []*AccessEntry{
			roleEntry(t, 1, membership.Maintainer),
			userEntry(t, 2, 42),
		}, nil)
		if err := b.RemovePushEntry(2); err != nil {
			t.Fatalf("RemovePushEntry() error = %v", err)
		}
		if len(b.PushEntries()) != 1 {
			t.Errorf("PushEntries() length = %d, want 1", len(b.PushEntries()))
		}
	})

	t.Run("removing an unknown entry fails", func(t *testing.T) {
		b := branch(t, 1, "main", ScopeProject, []*AccessEntry{
			roleEntry(t, 1, membership.Maintainer),
			userEntry(t, 2, 42),
		}, nil)
		if err := b.RemovePushEntry(99); !errors.Is(err, ErrAccessEntryNotFound) {
			t.Errorf("RemovePushEntry() error = %v, want ErrAccessEntryNotFound", err)
		}
	})
}

func TestProtectedBranch_MinimumPushLevel(t *testing.T) {
	tests := []struct {
		name    string
		entries []*AccessEntry
		want    membership.AccessLevel
	}{
		{
			name:    "single role entry",
			entries: []*AccessEntry{roleEntry(t, 1, membership.Maintainer)},
			want:    membership.Maintainer,
		},
		{
			name: "lowest role wins",
			entries: []*AccessEntry{
				roleEntry(t, 1, membership.Maintainer),
				roleEntry(t, 2, membership.Developer),
			},
			want: membership.Developer,
		},
		{
			name:    "only user entries fall back to maintainer",
			entries: []*AccessEntry{userEntry(t, 1, 42)},
			want:    membership.Maintainer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := branch(t, 1, "main", ScopeProject, tt.entries, nil)
			if got := b.MinimumPushLevel(); got != tt.want {
				t.Errorf("MinimumPushLevel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAccessEntry_Satisfies(t *testing.T) {
	tests := []struct {
		name        string
		entry       *AccessEntry
		actorID     uint
		actorLevel  membership.AccessLevel
		actorGroups []uint
		want        bool
	}{
		{"role entry met", roleEntry(t, 1, membership.Developer), 7, membership.Maintainer, nil, true},
		{"role entry unmet", roleEntry(t, 1, membership.Maintainer), 7, membership.Developer, nil, false},
		{"user entry match", userEntry(t, 1, 7), 7, membership.Guest, nil, true},
		{"user entry mismatch", userEntry(t, 1, 8), 7, membership.Owner, nil, false},
		{"group entry match", groupEntry(t, 1, 3), 7, membership.Guest, []uint{2, 3}, true},
		{"group entry mismatch", groupEntry(t, 1, 3), 7, membership.Guest, []uint{4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Satisfies(tt.actorID, tt.actorLevel, tt.actorGroups); got != tt.want {
				t.Errorf("Satisfies() = %v, want %v", got, tt.want)
			}
		})
	}
}
