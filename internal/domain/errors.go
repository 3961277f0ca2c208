package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one category,
// so callers can errors.Is against either level.
var (
	// ErrValidation signals input rejected at the operation boundary.
	ErrValidation = errors.New("validation error")
	// ErrReferential signals a dangling or missing reference.
	ErrReferential = errors.New("referential error")
	// ErrState signals an invalid lifecycle transition.
	ErrState = errors.New("state error")
	// ErrConsistency signals a broken structural invariant (modeling bug upstream).
	ErrConsistency = errors.New("consistency error")
	// ErrConflict signals a lost-update race; callers may retry with a fresh read.
	ErrConflict = errors.New("concurrency conflict")
)

var (
	// ErrInvalidScore signals a bounded score outside [0,1].
	ErrInvalidScore = fmt.Errorf("%w: score outside [0,1]", ErrValidation)
	// ErrInvalidEnum signals an unknown enumerated value.
	ErrInvalidEnum = fmt.Errorf("%w: unknown enum value", ErrValidation)
	// ErrEmptyField signals a required field left empty.
	ErrEmptyField = fmt.Errorf("%w: required field is empty", ErrValidation)
	// ErrAlreadyExists signals a uniqueness violation.
	ErrAlreadyExists = fmt.Errorf("%w: already exists", ErrValidation)

	// ErrTermNotFound signals a missing term.
	ErrTermNotFound = fmt.Errorf("%w: term not found", ErrReferential)
	// ErrVersionNotFound signals a missing term version.
	ErrVersionNotFound = fmt.Errorf("%w: term version not found", ErrReferential)
	// ErrParentNotFound signals a missing derivation parent.
	ErrParentNotFound = fmt.Errorf("%w: parent version not found", ErrReferential)
	// ErrAnchorNotFound signals a missing context anchor or association.
	ErrAnchorNotFound = fmt.Errorf("%w: context anchor not found", ErrReferential)
	// ErrAgentNotFound signals a missing analysis agent.
	ErrAgentNotFound = fmt.Errorf("%w: analysis agent not found", ErrReferential)
	// ErrActivityNotFound signals a missing drift activity.
	ErrActivityNotFound = fmt.Errorf("%w: drift activity not found", ErrReferential)

	// ErrParentSuperseded signals a linear derivation from a non-current parent.
	ErrParentSuperseded = fmt.Errorf("%w: parent version already superseded", ErrState)
	// ErrAlreadyTerminal signals a transition attempted on a terminal activity.
	ErrAlreadyTerminal = fmt.Errorf("%w: activity already terminal", ErrState)
	// ErrVersionSuperseded signals a write against a superseded version.
	ErrVersionSuperseded = fmt.Errorf("%w: version superseded", ErrState)
	// ErrActivityNotTerminal signals completion data required before the activity finished.
	ErrActivityNotTerminal = fmt.Errorf("%w: activity still running", ErrState)

	// ErrCycleDetected signals a derivation edge that would close a cycle.
	ErrCycleDetected = fmt.Errorf("%w: derivation cycle detected", ErrConsistency)
	// ErrNegativeFrequency signals an anchor counter that would go below zero.
	ErrNegativeFrequency = fmt.Errorf("%w: anchor frequency would go negative", ErrConsistency)
)
