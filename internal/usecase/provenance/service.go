package provenance

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Service handles the generic derivation ledger.
type Service struct {
	repo Repository
}

// New creates a provenance service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a derivation edge entity -> predecessor. Storage rejects
// edges that would close a cycle.
func (s *Service) Record(ctx context.Context, entityID uuid.UUID, entityType string, derivedFrom uuid.UUID, activityID *uuid.UUID, metadata map[string]string) (domain.ProvenanceEdge, error) {
	parsed, err := domain.ParseEntityType(entityType)
	if err != nil {
		return domain.ProvenanceEdge{}, err
	}
	edge, err := domain.NewProvenanceEdge(entityID, parsed, derivedFrom, activityID, metadata)
	if err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("validate edge: %w", err)
	}
	if err := s.repo.Record(ctx, edge); err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("record derivation: %w", err)
	}
	return edge, nil
}

// Lineage yields the derivation edges backward from an entity to its root.
func (s *Service) Lineage(ctx context.Context, entityType string, entityID uuid.UUID) (iter.Seq2[domain.ProvenanceEdge, error], error) {
	parsed, err := domain.ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}
	return s.repo.Lineage(ctx, parsed, entityID), nil
}

// Get returns the edge recorded for an entity, if any.
func (s *Service) Get(ctx context.Context, entityType string, entityID uuid.UUID) (domain.ProvenanceEdge, error) {
	parsed, err := domain.ParseEntityType(entityType)
	if err != nil {
		return domain.ProvenanceEdge{}, err
	}
	edge, err := s.repo.Get(ctx, parsed, entityID)
	if err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("get derivation: %w", err)
	}
	return edge, nil
}
