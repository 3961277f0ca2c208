package driftd

import "github.com/diachron-labs/driftd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation  = domain.ErrValidation
	ErrReferential = domain.ErrReferential
	ErrState       = domain.ErrState
	ErrConsistency = domain.ErrConsistency
	ErrConflict    = domain.ErrConflict

	ErrInvalidScore  = domain.ErrInvalidScore
	ErrInvalidEnum   = domain.ErrInvalidEnum
	ErrEmptyField    = domain.ErrEmptyField
	ErrAlreadyExists = domain.ErrAlreadyExists

	ErrTermNotFound     = domain.ErrTermNotFound
	ErrVersionNotFound  = domain.ErrVersionNotFound
	ErrParentNotFound   = domain.ErrParentNotFound
	ErrAnchorNotFound   = domain.ErrAnchorNotFound
	ErrAgentNotFound    = domain.ErrAgentNotFound
	ErrActivityNotFound = domain.ErrActivityNotFound

	ErrParentSuperseded = domain.ErrParentSuperseded
	ErrAlreadyTerminal  = domain.ErrAlreadyTerminal
	ErrCycleDetected    = domain.ErrCycleDetected
)
