package license

import (
	"errors"
	"fmt"
)

var (
	// ErrFeatureDisabled is returned when an action's governing feature is
	// not available in the licensing context
	ErrFeatureDisabled = errors.New("feature not available")

	// ErrLicenseExpired is returned when the license has lapsed
	ErrLicenseExpired = errors.New("license expired")
)

// ErrInvalidPlan returns an error for an unknown plan name
func ErrInvalidPlan(p Plan) error {
	return fmt.Errorf("invalid plan: %s", p)
}

// ErrUnknownFeature returns an error for an unknown feature name
func ErrUnknownFeature(f Feature) error {
	return fmt.Errorf("unknown feature: %s", f)
}
