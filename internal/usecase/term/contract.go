package term

import (
	"context"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Repository defines the storage contract for terms.
type Repository interface {
	Create(ctx context.Context, t domain.Term) error
	Get(ctx context.Context, id uuid.UUID) (domain.Term, error)
	GetByText(ctx context.Context, text string, createdBy int64) (domain.Term, error)
	List(ctx context.Context, status domain.TermStatus) ([]domain.Term, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TermStatus, updatedBy int64) error
}
