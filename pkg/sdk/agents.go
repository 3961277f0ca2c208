package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
)

// AgentService manages the analysis agent registry.
type AgentService struct {
	svc *agentuc.Service
	obs *observer
}

// RegisterAgentInput holds the fields for registering an agent.
// Type is one of "person", "software_agent", "organization"; software
// agents must name their algorithm.
type RegisterAgentInput struct {
	Type        string
	Name        string
	Description string
	Algorithm   string
	Params      *AlgorithmParams
	UserID      int64
}

// Register adds an agent to the registry, active by default.
func (s *AgentService) Register(ctx context.Context, in RegisterAgentInput) (_ Agent, err error) {
	start := time.Now()
	defer func() { s.obs.observe("agent.register", start, err) }()

	a, err := s.svc.Register(ctx, agentuc.RegisterInput{
		Type:        in.Type,
		Name:        in.Name,
		Description: in.Description,
		Algorithm:   in.Algorithm,
		Params:      in.Params,
		UserID:      in.UserID,
	})
	if err != nil {
		return Agent{}, fmt.Errorf("register agent: %w", err)
	}
	return fromInternalAgent(a), nil
}

// Get retrieves an agent by id.
func (s *AgentService) Get(ctx context.Context, id uuid.UUID) (_ Agent, err error) {
	start := time.Now()
	defer func() { s.obs.observe("agent.get", start, err) }()

	a, err := s.svc.Get(ctx, id)
	if err != nil {
		return Agent{}, fmt.Errorf("get agent: %w", err)
	}
	return fromInternalAgent(a), nil
}

// List returns registered agents, optionally only active ones.
func (s *AgentService) List(ctx context.Context, activeOnly bool) (_ []Agent, err error) {
	start := time.Now()
	defer func() { s.obs.observe("agent.list", start, err) }()

	agents, err := s.svc.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	out := make([]Agent, len(agents))
	for i, a := range agents {
		out[i] = fromInternalAgent(a)
	}
	return out, nil
}

// SetActive retires or reactivates an agent. Retired agents cannot start
// new activities; their history stays attributed.
func (s *AgentService) SetActive(ctx context.Context, id uuid.UUID, active bool) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("agent.set_active", start, err) }()

	if err = s.svc.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set agent active: %w", err)
	}
	return nil
}
