package provenance

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Repository defines the storage contract for the provenance chain.
type Repository interface {
	Record(ctx context.Context, e domain.ProvenanceEdge) error
	Lineage(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) iter.Seq2[domain.ProvenanceEdge, error]
	Get(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) (domain.ProvenanceEdge, error)
}
