package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityType discriminates the entity kinds the provenance chain can track.
// The generic edge table simulates polymorphism over heterogeneous entities
// without inheritance.
type EntityType string

const (
	EntityTermVersion EntityType = "term_version"
	EntityOntology    EntityType = "ontology"
	EntityMapping     EntityType = "mapping"
)

// ParseEntityType validates an entity type string.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityTermVersion, EntityOntology, EntityMapping:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("%w: entity type %q", ErrInvalidEnum, s)
}

// ProvenanceEdge records that an entity was derived from a predecessor,
// typically through a drift activity. The chain is append-only.
type ProvenanceEdge struct {
	ID          uuid.UUID
	EntityID    uuid.UUID
	EntityType  EntityType
	DerivedFrom uuid.UUID
	ActivityID  *uuid.UUID
	Metadata    map[string]string
	CreatedAt   time.Time
}

// NewProvenanceEdge builds an edge entity -> predecessor.
func NewProvenanceEdge(entityID uuid.UUID, entityType EntityType, derivedFrom uuid.UUID, activityID *uuid.UUID, metadata map[string]string) (ProvenanceEdge, error) {
	if _, err := ParseEntityType(string(entityType)); err != nil {
		return ProvenanceEdge{}, err
	}
	if entityID == derivedFrom {
		return ProvenanceEdge{}, fmt.Errorf("%w: entity derived from itself", ErrCycleDetected)
	}
	return ProvenanceEdge{
		ID:          uuid.New(),
		EntityID:    entityID,
		EntityType:  entityType,
		DerivedFrom: derivedFrom,
		ActivityID:  activityID,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
