package drift

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// --- Mocks ---

type mockActivities struct {
	store       map[uuid.UUID]domain.DriftActivity
	completed   bool
	failedWith  string
	provisional bool
	createErr   error
	completeErr error
	failErr     error
}

func newMockActivities() *mockActivities {
	return &mockActivities{store: map[uuid.UUID]domain.DriftActivity{}}
}

func (m *mockActivities) Create(_ context.Context, a domain.DriftActivity) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.store[a.ID] = a
	return nil
}

func (m *mockActivities) Get(_ context.Context, id uuid.UUID) (domain.DriftActivity, error) {
	a, ok := m.store[id]
	if !ok {
		return domain.DriftActivity{}, domain.ErrActivityNotFound
	}
	return a, nil
}

func (m *mockActivities) Complete(_ context.Context, id, generatedVersion uuid.UUID, magnitude domain.Score, detected bool, driftType domain.DriftType, evidence string) error {
	if m.completeErr != nil {
		return m.completeErr
	}
	a := m.store[id]
	a.Status = domain.ActivityCompleted
	a.GeneratedVersion = &generatedVersion
	a.Magnitude = &magnitude
	a.DriftDetected = detected
	a.DriftType = driftType
	a.Evidence = evidence
	m.store[id] = a
	m.completed = true
	return nil
}

func (m *mockActivities) Fail(_ context.Context, id uuid.UUID, errorSummary string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.failedWith = errorSummary
	return nil
}

func (m *mockActivities) MarkProvisional(_ context.Context, _ uuid.UUID) error {
	m.provisional = true
	return nil
}

func (m *mockActivities) ListStale(_ context.Context, _ time.Time) ([]domain.DriftActivity, error) {
	return nil, nil
}

type mockVersions struct {
	store          map[uuid.UUID]domain.TermVersion
	metricsWritten *domain.DriftMetrics
	updateErr      error
}

func newMockVersions(versions ...domain.TermVersion) *mockVersions {
	m := &mockVersions{store: map[uuid.UUID]domain.TermVersion{}}
	for _, v := range versions {
		m.store[v.ID] = v
	}
	return m
}

func (m *mockVersions) Get(_ context.Context, id uuid.UUID) (domain.TermVersion, error) {
	v, ok := m.store[id]
	if !ok {
		return domain.TermVersion{}, domain.ErrVersionNotFound
	}
	return v, nil
}

func (m *mockVersions) UpdateDriftMetrics(_ context.Context, _ uuid.UUID, metrics domain.DriftMetrics) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.metricsWritten = &metrics
	return nil
}

type mockAgents struct {
	agent domain.AnalysisAgent
	err   error
}

func (m *mockAgents) Get(_ context.Context, _ uuid.UUID) (domain.AnalysisAgent, error) {
	return m.agent, m.err
}

type mockProvenance struct {
	recorded  []domain.ProvenanceEdge
	recordErr error
}

func (m *mockProvenance) Record(_ context.Context, e domain.ProvenanceEdge) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, e)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc        *Service
	activities *mockActivities
	versions   *mockVersions
	provenance *mockProvenance
	v1, v2     domain.TermVersion
	agent      domain.AnalysisAgent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	termID := uuid.New()
	v1, err := domain.NewRootVersion(termID, "2025", "a violent troublemaker", 0.5, 1)
	if err != nil {
		t.Fatalf("NewRootVersion: %v", err)
	}
	v2, err := domain.NewDerivedVersion(v1, "2026", "an aggressive sports fan", 0.4,
		domain.DerivationDrift, domain.DriftMetrics{}, 1)
	if err != nil {
		t.Fatalf("NewDerivedVersion: %v", err)
	}
	agent, err := domain.NewAgent(domain.AgentSoftware, "drift-detector", "", "sgns-procrustes", nil, 1)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	activities := newMockActivities()
	versions := newMockVersions(v1, v2)
	provenance := &mockProvenance{}
	svc, err := New(activities, versions, &mockAgents{agent: agent}, provenance, domain.DefaultMagnitudePolicy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{svc: svc, activities: activities, versions: versions, provenance: provenance,
		v1: v1, v2: v2, agent: agent}
}

func (f *fixture) start(t *testing.T) domain.DriftActivity {
	t.Helper()
	a, err := f.svc.Start(context.Background(), StartInput{
		UsedVersion: f.v1.ID, AgentID: f.agent.ID,
		StartPeriod: "2025", EndPeriod: "2026", CreatedBy: 1,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return a
}

func scorePtr(t *testing.T, v float64) *domain.Score {
	t.Helper()
	s, err := domain.ScorePtr(v)
	if err != nil {
		t.Fatalf("ScorePtr: %v", err)
	}
	return s
}

func floatPtr(v float64) *float64 { return &v }

// --- Tests ---

func TestStart_Success(t *testing.T) {
	f := newFixture(t)

	a := f.start(t)
	if a.Status != domain.ActivityRunning {
		t.Errorf("expected running status, got %q", a.Status)
	}
	if a.Algorithm != "sgns-procrustes" {
		t.Errorf("expected agent's algorithm as default, got %q", a.Algorithm)
	}
}

func TestStart_UsedVersionMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background(), StartInput{
		UsedVersion: uuid.New(), AgentID: f.agent.ID, CreatedBy: 1,
	})
	if !errors.Is(err, domain.ErrVersionNotFound) {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestStart_RetiredAgent(t *testing.T) {
	f := newFixture(t)
	retired := f.agent
	retired.Active = false
	svc, err := New(f.activities, f.versions, &mockAgents{agent: retired}, f.provenance, domain.DefaultMagnitudePolicy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = svc.Start(context.Background(), StartInput{UsedVersion: f.v1.ID, AgentID: retired.ID, CreatedBy: 1})
	if !errors.Is(err, domain.ErrState) {
		t.Errorf("expected ErrState for retired agent, got %v", err)
	}
}

func TestComplete_WithExplicitMagnitude(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	out, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID:       a.ID,
		GeneratedVersion: f.v2.ID,
		Magnitude:        floatPtr(0.42),
		DriftType:        "shift",
		Evidence:         "neighborhood turnover",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != domain.ActivityCompleted {
		t.Errorf("expected completed, got %q", out.Status)
	}
	if !out.DriftDetected {
		t.Error("expected 0.42 >= threshold 0.3 to set the detected flag")
	}
	if len(f.provenance.recorded) != 1 {
		t.Fatalf("expected one provenance edge, got %d", len(f.provenance.recorded))
	}
	edge := f.provenance.recorded[0]
	if edge.EntityID != f.v2.ID || edge.DerivedFrom != f.v1.ID {
		t.Errorf("expected edge v2 -> v1, got %s -> %s", edge.EntityID, edge.DerivedFrom)
	}
	if edge.ActivityID == nil || *edge.ActivityID != a.ID {
		t.Error("expected the activity recorded on the edge")
	}
}

func TestComplete_ComputesMagnitudeFromMetrics(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	// overlap 0.4 -> loss 0.6; 0.5*0.6 + 0.25*0.5 + 0.25*0.3 = 0.5
	m := domain.DriftMetrics{
		NeighborhoodOverlap: scorePtr(t, 0.4),
		PositionalChange:    scorePtr(t, 0.5),
		SimilarityReduction: scorePtr(t, 0.3),
	}
	out, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: f.v2.ID, Metrics: &m, DriftType: "broadening",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Magnitude == nil || out.Magnitude.Float64() < 0.499 || out.Magnitude.Float64() > 0.501 {
		t.Errorf("expected magnitude 0.5, got %v", out.Magnitude)
	}
	if f.versions.metricsWritten == nil {
		t.Fatal("expected drift metrics written onto the generated version")
	}
	if f.versions.metricsWritten.PositionalChange.Float64() != 0.5 {
		t.Errorf("unexpected positional change %v", f.versions.metricsWritten.PositionalChange)
	}
}

func TestComplete_MagnitudeOutOfRangeLeavesActivityAlone(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	_, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: f.v2.ID, Magnitude: floatPtr(1.5), DriftType: "shift",
	})
	if !errors.Is(err, domain.ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
	got, err := f.svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.ActivityRunning {
		t.Errorf("rejected completion must leave the activity running, got %q", got.Status)
	}
	if len(f.provenance.recorded) != 0 {
		t.Error("rejected completion must not record provenance")
	}
}

func TestComplete_MissingMagnitudeAndMetrics(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	_, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: f.v2.ID, DriftType: "shift",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestComplete_GeneratedEqualsUsed(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	_, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: f.v1.ID, Magnitude: floatPtr(0.42), DriftType: "shift",
	})
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestComplete_GeneratedFromDifferentTerm(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	foreign, err := domain.NewRootVersion(uuid.New(), "2026", "a meaning of another term", 0.5, 1)
	if err != nil {
		t.Fatalf("NewRootVersion: %v", err)
	}
	f.versions.store[foreign.ID] = foreign

	_, err = f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: foreign.ID, Magnitude: floatPtr(0.42), DriftType: "shift",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for a cross-term completion, got %v", err)
	}
	got, err := f.svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.ActivityRunning {
		t.Errorf("rejected completion must leave the activity running, got %q", got.Status)
	}
	if len(f.provenance.recorded) != 0 {
		t.Error("rejected completion must not record provenance")
	}
}

func TestComplete_AlreadyTerminal(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)
	f.activities.completeErr = domain.ErrAlreadyTerminal

	_, err := f.svc.Complete(context.Background(), CompleteInput{
		ActivityID: a.ID, GeneratedVersion: f.v2.ID, Magnitude: floatPtr(0.42), DriftType: "shift",
	})
	if !errors.Is(err, domain.ErrAlreadyTerminal) {
		t.Errorf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestFail_RequiresSummary(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	err := f.svc.Fail(context.Background(), a.ID, "   ")
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField, got %v", err)
	}
	if f.activities.failedWith != "" {
		t.Error("expected no transition on blank summary")
	}
}

func TestFail_Success(t *testing.T) {
	f := newFixture(t)
	a := f.start(t)

	if err := f.svc.Fail(context.Background(), a.ID, "embedding service unavailable"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.activities.failedWith != "embedding service unavailable" {
		t.Errorf("unexpected summary %q", f.activities.failedWith)
	}
}

func TestEvaluate_RequiresAllMetrics(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Evaluate(domain.DriftMetrics{NeighborhoodOverlap: scorePtr(t, 0.4)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestEvaluate_ThresholdsDetection(t *testing.T) {
	f := newFixture(t)

	// overlap 0.95 -> loss 0.05; magnitude 0.5*0.05 + 0.25*0.1 + 0.25*0.1 = 0.075
	m := domain.DriftMetrics{
		NeighborhoodOverlap: scorePtr(t, 0.95),
		PositionalChange:    scorePtr(t, 0.1),
		SimilarityReduction: scorePtr(t, 0.1),
	}
	magnitude, detected, err := f.svc.Evaluate(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detected {
		t.Errorf("expected magnitude %v below threshold", magnitude)
	}
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	_, err := New(newMockActivities(), newMockVersions(), &mockAgents{}, &mockProvenance{},
		domain.MagnitudePolicy{Threshold: 1.5})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
