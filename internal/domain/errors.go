package domain

import "errors"

// Sentinel errors shared by stores and services. Callers wrap them with
// fmt.Errorf("%w: ...") and the HTTP layer maps them with errors.Is.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
)
