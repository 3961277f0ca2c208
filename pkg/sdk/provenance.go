package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	provuc "github.com/diachron-labs/driftd/internal/usecase/provenance"
)

// ProvenanceService manages the generic derivation chain.
type ProvenanceService struct {
	svc *provuc.Service
	obs *observer
}

// Record adds a derivation edge for an entity. EntityType is one of
// "term_version", "analysis_result", "annotation".
func (s *ProvenanceService) Record(
	ctx context.Context, entityID uuid.UUID, entityType string,
	derivedFrom uuid.UUID, activityID *uuid.UUID, metadata map[string]string,
) (_ Edge, err error) {
	start := time.Now()
	defer func() { s.obs.observe("provenance.record", start, err) }()

	e, err := s.svc.Record(ctx, entityID, entityType, derivedFrom, activityID, metadata)
	if err != nil {
		return Edge{}, fmt.Errorf("record derivation: %w", err)
	}
	return fromInternalEdge(e), nil
}

// Get retrieves an entity's derivation edge.
func (s *ProvenanceService) Get(ctx context.Context, entityType string, entityID uuid.UUID) (_ Edge, err error) {
	start := time.Now()
	defer func() { s.obs.observe("provenance.get", start, err) }()

	e, err := s.svc.Get(ctx, entityType, entityID)
	if err != nil {
		return Edge{}, fmt.Errorf("get derivation: %w", err)
	}
	return fromInternalEdge(e), nil
}

// Lineage walks the derivation chain from the entity back to its root.
func (s *ProvenanceService) Lineage(ctx context.Context, entityType string, entityID uuid.UUID) (_ []Edge, err error) {
	start := time.Now()
	defer func() { s.obs.observe("provenance.lineage", start, err) }()

	seq, err := s.svc.Lineage(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("lineage: %w", err)
	}
	var out []Edge
	for e, iterErr := range seq {
		if iterErr != nil {
			return nil, fmt.Errorf("lineage: %w", iterErr)
		}
		out = append(out, fromInternalEdge(e))
	}
	return out, nil
}
