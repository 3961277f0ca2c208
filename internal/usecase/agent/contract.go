package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Repository defines the storage contract for analysis agents.
type Repository interface {
	Create(ctx context.Context, a domain.AnalysisAgent) error
	Get(ctx context.Context, id uuid.UUID) (domain.AnalysisAgent, error)
	List(ctx context.Context, activeOnly bool) ([]domain.AnalysisAgent, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
