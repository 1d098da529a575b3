package domain

import "errors"

var (
	ErrNotFound             = errors.New("article not found")
	ErrNoContent            = errors.New("no content available")
	ErrParse                = errors.New("could not parse model response")
	ErrConflict             = errors.New("article with this slug already exists")
	ErrValidation           = errors.New("validation failed")
	ErrGeneratorUnavailable = errors.New("text generation service is not running")
	ErrCancelled            = errors.New("cancelled")
)
