package resource

import "errors"

var (
	// ErrResourceNotFound indicates the resource does not exist or is hidden
	// from the requester
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidKind indicates an unknown resource kind
	ErrInvalidKind = errors.New("invalid resource kind")

	// ErrInvalidVisibility indicates an unknown visibility value
	ErrInvalidVisibility = errors.New("invalid visibility")
)
