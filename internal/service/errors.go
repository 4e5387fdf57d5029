package service

import "errors"

// Domain errors surfaced to the HTTP layer. Handlers map them with errors.Is;
// anything else is treated as an internal failure.
var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("sweet not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrValidation         = errors.New("validation failed")
)
