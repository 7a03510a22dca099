package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

// ParseUintParam parses and validates a numeric ID from a URL path parameter.
// entityName is used in error messages (e.g., "project", "member").
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewValidationError(
			fmt.Sprintf("invalid %s ID: %q", entityName, raw),
		)
	}

	return uint(n), nil
}

// IDFilterKind distinguishes the literal filter values "None" and "Any" from
// a concrete identifier.
type IDFilterKind int

const (
	IDFilterUnset IDFilterKind = iota
	IDFilterNone
	IDFilterAny
	IDFilterID
)

// IDFilter is the parsed form of a collection filter parameter that accepts
// "None", "Any", or a specific id.
type IDFilter struct {
	Kind IDFilterKind
	ID   uint
}

// ParseIDFilter parses a query parameter that accepts the literals "None" and
// "Any" as well as a numeric identifier. The literals are matched exactly:
// "none" is neither a literal nor a valid id and is rejected.
func ParseIDFilter(c *gin.Context, key string) (IDFilter, error) {
	raw := c.Query(key)
	switch raw {
	case "":
		return IDFilter{Kind: IDFilterUnset}, nil
	case constants.FilterNone:
		return IDFilter{Kind: IDFilterNone}, nil
	case constants.FilterAny:
		return IDFilter{Kind: IDFilterAny}, nil
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return IDFilter{}, errors.NewBadRequestError(
			fmt.Sprintf("%s must be %q, %q or a valid ID", key, constants.FilterNone, constants.FilterAny),
		)
	}
	return IDFilter{Kind: IDFilterID, ID: uint(n)}, nil
}
