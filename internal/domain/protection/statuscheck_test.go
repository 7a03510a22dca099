package protection

import (
	"errors"
	"testing"
	"time"
)

func TestExternalStatusCheck_Retry(t *testing.T) {
	tests := []struct {
		name      string
		lastState CheckState
		wantErr   error
	}{
		{"failed check can be retried", CheckStateFailed, nil},
		{"passed check cannot be retried", CheckStatePassed, ErrCheckNotFailed},
		{"pending check cannot be retried", CheckStatePending, ErrCheckNotFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := ReconstructExternalStatusCheck(1, 1, "security-scan", "https://checks.example.com", tt.lastState, time.Now())
			if err != nil {
				t.Fatalf("ReconstructExternalStatusCheck() error = %v", err)
			}

			err = check.Retry()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Retry() error = %v, want %v", err, tt.wantErr)
				}
				if check.LastState() != tt.lastState {
					t.Errorf("LastState() = %q, want unchanged %q", check.LastState(), tt.lastState)
				}
				return
			}
			if err != nil {
				t.Fatalf("Retry() error = %v, want nil", err)
			}
			if check.LastState() != CheckStatePending {
				t.Errorf("LastState() after retry = %q, want pending", check.LastState())
			}
		})
	}
}

func TestNewExternalStatusCheck(t *testing.T) {
	t.Run("new checks start pending", func(t *testing.T) {
		check, err := NewExternalStatusCheck(1, "qa", "https://qa.example.com")
		if err != nil {
			t.Fatalf("NewExternalStatusCheck() error = %v", err)
		}
		if check.LastState() != CheckStatePending {
			t.Errorf("LastState() = %q, want pending", check.LastState())
		}
	})

	tests := []struct {
		name      string
		projectID uint
		checkName string
		url       string
	}{
		{"zero project", 0, "qa", "https://qa.example.com"},
		{"empty name", 1, "", "https://qa.example.com"},
		{"empty url", 1, "qa", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewExternalStatusCheck(tt.projectID, tt.checkName, tt.url); err == nil {
				t.Error("NewExternalStatusCheck() error = nil, want error")
			}
		})
	}
}
