package drift

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
	"github.com/diachron-labs/driftd/internal/metrics"
)

// Service orchestrates drift-detection activities: the state machine, the
// magnitude policy, the metrics written back onto the generated version and
// the provenance edge recorded on completion.
type Service struct {
	activities ActivityRepository
	versions   VersionReader
	agents     AgentReader
	provenance ProvenanceRecorder
	policy     domain.MagnitudePolicy
}

// New creates a drift service.
func New(activities ActivityRepository, versions VersionReader, agents AgentReader, provenance ProvenanceRecorder, policy domain.MagnitudePolicy) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("magnitude policy: %w", err)
	}
	return &Service{
		activities: activities,
		versions:   versions,
		agents:     agents,
		provenance: provenance,
		policy:     policy,
	}, nil
}

// StartInput is the request to start a drift-detection activity.
type StartInput struct {
	UsedVersion uuid.UUID
	AgentID     uuid.UUID
	StartPeriod string
	EndPeriod   string
	Algorithm   string
	Params      *domain.AlgorithmParams
	Years       []int
	CreatedBy   int64
}

// CompleteInput is the request to complete an activity. Magnitude may be
// given directly or computed from the three drift metrics.
type CompleteInput struct {
	ActivityID       uuid.UUID
	GeneratedVersion uuid.UUID
	Magnitude        *float64
	Metrics          *domain.DriftMetrics
	DriftType        string
	Evidence         string
}

// Start records a running activity consuming a version. The consumed version
// and the agent must exist, and the agent must still be active.
func (s *Service) Start(ctx context.Context, in StartInput) (domain.DriftActivity, error) {
	if _, err := s.versions.Get(ctx, in.UsedVersion); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("used version: %w", err)
	}
	agent, err := s.agents.Get(ctx, in.AgentID)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("agent: %w", err)
	}
	if !agent.Active {
		return domain.DriftActivity{}, fmt.Errorf("agent %s is retired: %w", agent.ID, domain.ErrState)
	}
	algorithm := in.Algorithm
	if algorithm == "" {
		algorithm = agent.Algorithm
	}

	a, err := domain.NewActivity(in.UsedVersion, in.AgentID, in.StartPeriod, in.EndPeriod,
		algorithm, in.Params, in.Years, in.CreatedBy)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("validate activity: %w", err)
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("start activity: %w", err)
	}
	metrics.ActivitiesTotal.WithLabelValues(string(domain.ActivityRunning)).Inc()
	return a, nil
}

// Complete transitions an activity to completed, writes the drift metrics
// onto the generated version and records the provenance edge from the
// generated version back to the consumed one. All inputs are validated
// before the transition, so a rejected completion leaves the activity in its
// previous status.
func (s *Service) Complete(ctx context.Context, in CompleteInput) (domain.DriftActivity, error) {
	driftType, err := domain.ParseDriftType(in.DriftType)
	if err != nil {
		return domain.DriftActivity{}, err
	}
	magnitude, err := s.resolveMagnitude(in)
	if err != nil {
		return domain.DriftActivity{}, err
	}
	detected := s.policy.Detected(magnitude)

	generated, err := s.versions.Get(ctx, in.GeneratedVersion)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("generated version: %w", err)
	}
	act, err := s.activities.Get(ctx, in.ActivityID)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("get activity: %w", err)
	}
	if generated.ID == act.UsedVersion {
		return domain.DriftActivity{}, fmt.Errorf("activity %s cannot generate the version it consumed: %w",
			act.ID, domain.ErrCycleDetected)
	}
	used, err := s.versions.Get(ctx, act.UsedVersion)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("used version: %w", err)
	}
	// The provenance edge generated -> used must stay within one term's
	// lineage.
	if generated.TermID != used.TermID {
		return domain.DriftActivity{}, fmt.Errorf("%w: generated version %s belongs to a different term than consumed version %s",
			domain.ErrValidation, generated.ID, used.ID)
	}

	if err := s.activities.Complete(ctx, in.ActivityID, generated.ID, magnitude, detected, driftType, in.Evidence); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("complete activity: %w", err)
	}
	if in.Metrics != nil {
		if err := s.versions.UpdateDriftMetrics(ctx, generated.ID, *in.Metrics); err != nil {
			return domain.DriftActivity{}, fmt.Errorf("record drift metrics: %w", err)
		}
	}
	if err := s.recordEdge(ctx, act, generated); err != nil {
		return domain.DriftActivity{}, err
	}
	metrics.ActivitiesTotal.WithLabelValues(string(domain.ActivityCompleted)).Inc()

	out, err := s.activities.Get(ctx, in.ActivityID)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("reload activity: %w", err)
	}
	return out, nil
}

// recordEdge appends generated -> used to the provenance chain. A duplicate
// edge means a previous completion attempt already recorded it.
func (s *Service) recordEdge(ctx context.Context, act domain.DriftActivity, generated domain.TermVersion) error {
	activityID := act.ID
	edge, err := domain.NewProvenanceEdge(generated.ID, domain.EntityTermVersion, act.UsedVersion,
		&activityID, map[string]string{"algorithm": act.Algorithm})
	if err != nil {
		return fmt.Errorf("provenance edge: %w", err)
	}
	if err := s.provenance.Record(ctx, edge); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("record provenance: %w", err)
	}
	return nil
}

func (s *Service) resolveMagnitude(in CompleteInput) (domain.Score, error) {
	if in.Magnitude != nil {
		magnitude, err := domain.NewScore(*in.Magnitude)
		if err != nil {
			return 0, fmt.Errorf("magnitude: %w", err)
		}
		return magnitude, nil
	}
	if in.Metrics != nil {
		magnitude, _, err := s.Evaluate(*in.Metrics)
		return magnitude, err
	}
	return 0, fmt.Errorf("%w: completion needs a magnitude or the drift metrics", domain.ErrValidation)
}

// Evaluate combines the three drift metrics into a magnitude and the
// detected flag. Overlap measures stability, so its loss enters the
// combination.
func (s *Service) Evaluate(m domain.DriftMetrics) (domain.Score, bool, error) {
	if m.NeighborhoodOverlap == nil || m.PositionalChange == nil || m.SimilarityReduction == nil {
		return 0, false, fmt.Errorf("%w: all three drift metrics are required", domain.ErrValidation)
	}
	overlapLoss := domain.Score(1 - m.NeighborhoodOverlap.Float64())
	magnitude := s.policy.Magnitude(overlapLoss, *m.PositionalChange, *m.SimilarityReduction)
	return magnitude, s.policy.Detected(magnitude), nil
}

// Fail transitions an activity to the terminal error status. The summary is
// mandatory so failed runs stay diagnosable.
func (s *Service) Fail(ctx context.Context, id uuid.UUID, errorSummary string) error {
	if strings.TrimSpace(errorSummary) == "" {
		return fmt.Errorf("%w: error summary", domain.ErrEmptyField)
	}
	if err := s.activities.Fail(ctx, id, errorSummary); err != nil {
		return fmt.Errorf("fail activity: %w", err)
	}
	metrics.ActivitiesTotal.WithLabelValues(string(domain.ActivityError)).Inc()
	return nil
}

// MarkProvisional flags a running activity whose signal is tentative.
func (s *Service) MarkProvisional(ctx context.Context, id uuid.UUID) error {
	if err := s.activities.MarkProvisional(ctx, id); err != nil {
		return fmt.Errorf("mark provisional: %w", err)
	}
	metrics.ActivitiesTotal.WithLabelValues(string(domain.ActivityProvisional)).Inc()
	return nil
}

// Get retrieves an activity by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.DriftActivity, error) {
	a, err := s.activities.Get(ctx, id)
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// Stale returns non-terminal activities older than the given age, for the
// external reconciliation job. The service never transitions them itself.
func (s *Service) Stale(ctx context.Context, olderThan time.Duration) ([]domain.DriftActivity, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := s.activities.ListStale(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale activities: %w", err)
	}
	return stale, nil
}
