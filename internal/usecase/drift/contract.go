package drift

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// ActivityRepository defines the storage contract for drift activities.
type ActivityRepository interface {
	Create(ctx context.Context, a domain.DriftActivity) error
	Get(ctx context.Context, id uuid.UUID) (domain.DriftActivity, error)
	Complete(ctx context.Context, id, generatedVersion uuid.UUID, magnitude domain.Score, detected bool, driftType domain.DriftType, evidence string) error
	Fail(ctx context.Context, id uuid.UUID, errorSummary string) error
	MarkProvisional(ctx context.Context, id uuid.UUID) error
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.DriftActivity, error)
}

// VersionReader looks up versions and records metrics computed by a
// completed activity.
type VersionReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.TermVersion, error)
	UpdateDriftMetrics(ctx context.Context, id uuid.UUID, m domain.DriftMetrics) error
}

// AgentReader looks up the agent starting an activity.
type AgentReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.AnalysisAgent, error)
}

// ProvenanceRecorder appends the derivation edge of a completed activity.
type ProvenanceRecorder interface {
	Record(ctx context.Context, e domain.ProvenanceEdge) error
}
