package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Service handles the analysis agent registry.
type Service struct {
	repo Repository
}

// New creates an agent service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput is the request to register an analysis agent.
type RegisterInput struct {
	Type        string
	Name        string
	Description string
	Algorithm   string
	Params      *domain.AlgorithmParams
	UserID      int64
}

// Register validates and stores an agent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.AnalysisAgent, error) {
	a, err := domain.NewAgent(domain.AgentType(in.Type), in.Name, in.Description, in.Algorithm, in.Params, in.UserID)
	if err != nil {
		return domain.AnalysisAgent{}, fmt.Errorf("validate agent: %w", err)
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return domain.AnalysisAgent{}, fmt.Errorf("register agent: %w", err)
	}
	return a, nil
}

// Get retrieves an agent by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.AnalysisAgent, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.AnalysisAgent{}, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// List returns agents, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.AnalysisAgent, error) {
	agents, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// SetActive flips an agent's active flag. Retired agents keep their history
// but cannot start new activities.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set agent active: %w", err)
	}
	return nil
}
