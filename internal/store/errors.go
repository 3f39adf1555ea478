package store

import "errors"

// Sentinel errors returned by store operations. The service layer
// translates these into domain errors with HTTP-mappable codes.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag name already in use")

	ErrMemoNotFound        = errors.New("memo not found")
	ErrInvalidTagReference = errors.New("referenced tag does not exist")
)
