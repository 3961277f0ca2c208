package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	created   domain.AnalysisAgent
	getResult domain.AnalysisAgent
	createErr error
	getErr    error
	setErr    error
}

func (m *mockRepo) Create(_ context.Context, a domain.AnalysisAgent) error {
	m.created = a
	return m.createErr
}

func (m *mockRepo) Get(_ context.Context, _ uuid.UUID) (domain.AnalysisAgent, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) List(_ context.Context, _ bool) ([]domain.AnalysisAgent, error) {
	return nil, nil
}

func (m *mockRepo) SetActive(_ context.Context, _ uuid.UUID, _ bool) error {
	return m.setErr
}

// --- Tests ---

func TestRegister_Person(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	a, err := svc.Register(context.Background(), RegisterInput{Type: "person", Name: "Ada", UserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Active {
		t.Error("expected new agent to be active")
	}
	if repo.created.Name != "Ada" {
		t.Errorf("expected agent passed to repository, got %q", repo.created.Name)
	}
}

func TestRegister_SoftwareNeedsAlgorithm(t *testing.T) {
	svc := New(&mockRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{Type: "software_agent", Name: "detector", UserID: 1})
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField, got %v", err)
	}
}

func TestRegister_InvalidType(t *testing.T) {
	svc := New(&mockRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{Type: "robot", Name: "detector", UserID: 1})
	if !errors.Is(err, domain.ErrInvalidEnum) {
		t.Errorf("expected ErrInvalidEnum, got %v", err)
	}
}

func TestRegister_InvalidParams(t *testing.T) {
	svc := New(&mockRepo{})

	params := &domain.AlgorithmParams{Family: "neighborhood_jaccard", SchemaVersion: 1}
	_, err := svc.Register(context.Background(), RegisterInput{
		Type: "software_agent", Name: "detector", Algorithm: "jaccard-knn", Params: params, UserID: 1,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing required params, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrAgentNotFound}
	svc := New(repo)

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}
