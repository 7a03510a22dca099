// Package licensing loads plan feature tables from configuration files.
package licensing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
)

// LoadPlanTable reads a plan-to-features table from a YAML file. The file
// maps plan names to feature name lists:
//
//	premium:
//	  - merge_request_approvers
//	ultimate:
//	  - audit_events
//
// Unknown plan or feature names are rejected so a typo cannot silently
// un-license a feature in production.
func LoadPlanTable(path string) (map[license.Plan][]license.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan table: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse plan table: %w", err)
	}

	table := make(map[license.Plan][]license.Feature, len(raw))
	for planName, featureNames := range raw {
		plan := license.Plan(planName)
		if !plan.IsValid() {
			return nil, fmt.Errorf("unknown plan in plan table: %s", planName)
		}
		features := make([]license.Feature, 0, len(featureNames))
		for _, name := range featureNames {
			feature := license.Feature(name)
			if !feature.IsValid() {
				return nil, fmt.Errorf("unknown feature in plan table: %s", name)
			}
			features = append(features, feature)
		}
		table[plan] = features
	}
	return table, nil
}
