package anchor

import (
	"context"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Repository defines the storage contract for the anchor registry. Attach and
// Detach maintain the frequency counter transactionally.
type Repository interface {
	Attach(ctx context.Context, versionID uuid.UUID, text string, similarity *domain.Score, rank *int) (domain.AnchorLink, error)
	Detach(ctx context.Context, versionID, anchorID uuid.UUID) error
	Neighborhood(ctx context.Context, versionID uuid.UUID) ([]domain.AnchorLink, error)
	Vocabulary(ctx context.Context, limit int) ([]domain.ContextAnchor, error)
	GetByText(ctx context.Context, text string) (domain.ContextAnchor, error)
}
