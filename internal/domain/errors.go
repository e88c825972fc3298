package domain

import "errors"

// Sentinel errors returned by repositories and mapped to HTTP status codes
// at the handler boundary.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)
