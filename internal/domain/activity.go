package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityStatus is the lifecycle status of a drift activity.
type ActivityStatus string

const (
	ActivityRunning     ActivityStatus = "running"
	ActivityCompleted   ActivityStatus = "completed"
	ActivityError       ActivityStatus = "error"
	ActivityProvisional ActivityStatus = "provisional"
)

// activityTransitions is the full transition table:
// running -> {completed, error, provisional}; provisional -> {completed, error}.
var activityTransitions = map[ActivityStatus][]ActivityStatus{
	ActivityRunning:     {ActivityCompleted, ActivityError, ActivityProvisional},
	ActivityProvisional: {ActivityCompleted, ActivityError},
}

// CanTransition reports whether from -> to is a legal status transition.
func (from ActivityStatus) CanTransition(to ActivityStatus) bool {
	for _, next := range activityTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (from ActivityStatus) Terminal() bool {
	return len(activityTransitions[from]) == 0
}

// DriftType classifies the kind of semantic change an activity detected.
type DriftType string

const (
	DriftNone         DriftType = "none"
	DriftBroadening   DriftType = "broadening"
	DriftNarrowing    DriftType = "narrowing"
	DriftAmelioration DriftType = "amelioration"
	DriftPejoration   DriftType = "pejoration"
	DriftShift        DriftType = "shift"
)

// ParseDriftType validates a drift type string; empty is allowed for
// activities that detected no drift.
func ParseDriftType(s string) (DriftType, error) {
	switch DriftType(s) {
	case "", DriftNone, DriftBroadening, DriftNarrowing, DriftAmelioration, DriftPejoration, DriftShift:
		return DriftType(s), nil
	}
	return "", fmt.Errorf("%w: drift type %q", ErrInvalidEnum, s)
}

// DriftActivity is a provenance activity consuming one term version and,
// once completed, producing another. Magnitude is meaningful only in the
// completed status.
type DriftActivity struct {
	ID               uuid.UUID
	Type             string
	UsedVersion      uuid.UUID
	GeneratedVersion *uuid.UUID
	AgentID          uuid.UUID
	StartPeriod      string
	EndPeriod        string
	Years            []int
	Algorithm        string
	Params           *AlgorithmParams
	StartedAt        time.Time
	EndedAt          *time.Time
	Status           ActivityStatus
	DriftDetected    bool
	Magnitude        *Score
	DriftType        DriftType
	Evidence         string
	CreatedBy        int64
}

// NewActivity builds a running activity consuming usedVersion.
func NewActivity(
	usedVersion, agentID uuid.UUID, startPeriod, endPeriod, algorithm string,
	params *AlgorithmParams, years []int, createdBy int64,
) (DriftActivity, error) {
	if params != nil {
		if err := params.Validate(); err != nil {
			return DriftActivity{}, err
		}
	}
	return DriftActivity{
		ID:          uuid.New(),
		Type:        "semantic_drift_detection",
		UsedVersion: usedVersion,
		AgentID:     agentID,
		StartPeriod: startPeriod,
		EndPeriod:   endPeriod,
		Years:       years,
		Algorithm:   algorithm,
		Params:      params,
		StartedAt:   time.Now().UTC(),
		Status:      ActivityRunning,
		CreatedBy:   createdBy,
	}, nil
}
