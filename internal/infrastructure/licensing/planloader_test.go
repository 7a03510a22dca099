package licensing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
)

func writePlanTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write plan table: %v", err)
	}
	return path
}

func TestLoadPlanTable(t *testing.T) {
	path := writePlanTable(t, `
free: []
premium:
  - merge_request_approvers
ultimate:
  - merge_request_approvers
  - audit_events
`)

	table, err := LoadPlanTable(path)

	assert.NoError(t, err)
	assert.Empty(t, table[license.PlanFree])
	assert.Equal(t, []license.Feature{license.FeatureMergeRequestApprovers}, table[license.PlanPremium])
	assert.Contains(t, table[license.PlanUltimate], license.FeatureAuditEvents)

	registry := license.NewRegistryWithTable(table)
	ultimate, err := license.NewContext(license.PlanUltimate)
	assert.NoError(t, err)
	premium, err := license.NewContext(license.PlanPremium)
	assert.NoError(t, err)
	assert.True(t, registry.Enabled(license.FeatureAuditEvents, ultimate))
	assert.False(t, registry.Enabled(license.FeatureAuditEvents, premium))
}

func TestLoadPlanTableRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown plan",
			content: "platinum:\n  - audit_events\n",
			errMsg:  "unknown plan",
		},
		{
			name:    "unknown feature",
			content: "premium:\n  - audit_evnts\n",
			errMsg:  "unknown feature",
		},
		{
			name:    "malformed yaml",
			content: "premium: [unterminated\n",
			errMsg:  "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePlanTable(t, tt.content)

			table, err := LoadPlanTable(path)

			assert.Error(t, err)
			assert.Nil(t, table)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadPlanTableMissingFile(t *testing.T) {
	table, err := LoadPlanTable(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
	assert.Nil(t, table)
}
