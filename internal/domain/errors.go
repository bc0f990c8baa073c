package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidParams     = errors.New("invalid generation params")
	ErrCreditsExhausted  = errors.New("credits exhausted")
	ErrProviderFailure   = errors.New("provider failure")
	ErrLineageCycle      = errors.New("edit lineage cycle")
)
