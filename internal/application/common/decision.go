// Package common holds helpers shared across use cases.
package common

import (
	"fmt"

	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

// DecisionError translates a denying gate decision into the application
// error carrying the boundary's status contract. Hidden resources and hidden
// features both map to not-found so existence never leaks.
func DecisionError(d authz.Decision) *errors.AppError {
	switch d.Reason {
	case authz.ReasonUnauthenticated:
		return errors.NewUnauthorizedError(constants.ErrMsgUnauthorized)
	case authz.ReasonHidden:
		return errors.NewNotFoundError(constants.ErrMsgResourceNotFound)
	case authz.ReasonFeatureDisabled:
		return errors.NewForbiddenError(d.Message)
	case authz.ReasonApprovalRequired:
		return errors.NewForbiddenError(
			fmt.Sprintf("deployment approvals outstanding: %d", d.ApprovalsLeft))
	case authz.ReasonStateConflict:
		return errors.NewConflictError(d.Message)
	case authz.ReasonInvalidState:
		return errors.NewUnprocessableError(d.Message)
	case authz.ReasonMalformedInput:
		return errors.NewBadRequestError(d.Message)
	default:
		return errors.NewForbiddenError(constants.ErrMsgForbidden)
	}
}
