package version

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Repository defines the storage contract for term versions.
type Repository interface {
	CreateRoot(ctx context.Context, v domain.TermVersion) error
	Derive(ctx context.Context, v domain.TermVersion) (domain.TermVersion, error)
	SetCurrent(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.TermVersion, error)
	Current(ctx context.Context, termID uuid.UUID) (domain.TermVersion, error)
	History(ctx context.Context, termID uuid.UUID) iter.Seq2[domain.TermVersion, error]
}

// AdjustmentRepository defines the storage contract for the fuzziness
// adjustment log.
type AdjustmentRepository interface {
	Adjust(ctx context.Context, versionID uuid.UUID, newScore domain.Score, reason string, adjustedBy int64) (domain.FuzzinessAdjustment, error)
	ListForVersion(ctx context.Context, versionID uuid.UUID) ([]domain.FuzzinessAdjustment, error)
}
