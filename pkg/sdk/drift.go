package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
)

// DriftService manages drift analysis activities.
type DriftService struct {
	svc *driftuc.Service
	obs *observer
}

// StartActivityInput holds the fields for starting an activity.
// Algorithm defaults to the agent's registered algorithm.
type StartActivityInput struct {
	UsedVersion uuid.UUID
	AgentID     uuid.UUID
	StartPeriod string
	EndPeriod   string
	Algorithm   string
	Params      *AlgorithmParams
	Years       []int
	CreatedBy   int64
}

// CompleteActivityInput holds the completion payload. Either Magnitude or
// all three Metrics must be set; DriftType is one of "shift", "broadening",
// "narrowing", "amelioration", "pejoration".
type CompleteActivityInput struct {
	ActivityID       uuid.UUID
	GeneratedVersion uuid.UUID
	Magnitude        *float64
	Metrics          *DriftMetrics
	DriftType        string
	Evidence         string
}

// Start opens a running activity recording which version an agent analyzes.
func (s *DriftService) Start(ctx context.Context, in StartActivityInput) (_ Activity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.start", start, err) }()

	a, err := s.svc.Start(ctx, driftuc.StartInput{
		UsedVersion: in.UsedVersion,
		AgentID:     in.AgentID,
		StartPeriod: in.StartPeriod,
		EndPeriod:   in.EndPeriod,
		Algorithm:   in.Algorithm,
		Params:      in.Params,
		Years:       in.Years,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return Activity{}, fmt.Errorf("start activity: %w", err)
	}
	return fromInternalActivity(a), nil
}

// Complete finishes a running or provisional activity, binding the generated
// version, the drift verdict and the provenance edge back to the used version.
func (s *DriftService) Complete(ctx context.Context, in CompleteActivityInput) (_ Activity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.complete", start, err) }()

	m, err := toInternalMetrics(in.Metrics)
	if err != nil {
		return Activity{}, fmt.Errorf("complete activity: %w", err)
	}
	a, err := s.svc.Complete(ctx, driftuc.CompleteInput{
		ActivityID:       in.ActivityID,
		GeneratedVersion: in.GeneratedVersion,
		Magnitude:        in.Magnitude,
		Metrics:          m,
		DriftType:        in.DriftType,
		Evidence:         in.Evidence,
	})
	if err != nil {
		return Activity{}, fmt.Errorf("complete activity: %w", err)
	}
	return fromInternalActivity(a), nil
}

// Fail marks a running or provisional activity as errored with a summary.
func (s *DriftService) Fail(ctx context.Context, id uuid.UUID, errorSummary string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.fail", start, err) }()

	if err = s.svc.Fail(ctx, id, errorSummary); err != nil {
		return fmt.Errorf("fail activity: %w", err)
	}
	return nil
}

// MarkProvisional parks a running activity awaiting human review.
func (s *DriftService) MarkProvisional(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.mark_provisional", start, err) }()

	if err = s.svc.MarkProvisional(ctx, id); err != nil {
		return fmt.Errorf("mark provisional: %w", err)
	}
	return nil
}

// Get retrieves an activity by id.
func (s *DriftService) Get(ctx context.Context, id uuid.UUID) (_ Activity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.get", start, err) }()

	a, err := s.svc.Get(ctx, id)
	if err != nil {
		return Activity{}, fmt.Errorf("get activity: %w", err)
	}
	return fromInternalActivity(a), nil
}

// Stale returns non-terminal activities started more than olderThan ago.
func (s *DriftService) Stale(ctx context.Context, olderThan time.Duration) (_ []Activity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("drift.stale", start, err) }()

	acts, err := s.svc.Stale(ctx, olderThan)
	if err != nil {
		return nil, fmt.Errorf("stale activities: %w", err)
	}
	out := make([]Activity, len(acts))
	for i, a := range acts {
		out[i] = fromInternalActivity(a)
	}
	return out, nil
}

func toInternalMetrics(m *DriftMetrics) (*domain.DriftMetrics, error) {
	if m == nil {
		return nil, nil
	}
	var (
		out domain.DriftMetrics
		err error
	)
	if m.NeighborhoodOverlap != nil {
		if out.NeighborhoodOverlap, err = domain.ScorePtr(*m.NeighborhoodOverlap); err != nil {
			return nil, fmt.Errorf("neighborhood overlap: %w", err)
		}
	}
	if m.PositionalChange != nil {
		if out.PositionalChange, err = domain.ScorePtr(*m.PositionalChange); err != nil {
			return nil, fmt.Errorf("positional change: %w", err)
		}
	}
	if m.SimilarityReduction != nil {
		if out.SimilarityReduction, err = domain.ScorePtr(*m.SimilarityReduction); err != nil {
			return nil, fmt.Errorf("similarity reduction: %w", err)
		}
	}
	return &out, nil
}
