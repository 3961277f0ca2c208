package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AgentType discriminates the kinds of analysis agents.
type AgentType string

const (
	AgentPerson       AgentType = "person"
	AgentSoftware     AgentType = "software_agent"
	AgentOrganization AgentType = "organization"
)

// ParseAgentType validates an agent type string.
func ParseAgentType(s string) (AgentType, error) {
	switch AgentType(s) {
	case AgentPerson, AgentSoftware, AgentOrganization:
		return AgentType(s), nil
	}
	return "", fmt.Errorf("%w: agent type %q", ErrInvalidEnum, s)
}

// AnalysisAgent is a person, software agent or organization capable of
// producing term versions and drift activities.
type AnalysisAgent struct {
	ID          uuid.UUID
	Type        AgentType
	Name        string
	Description string
	Algorithm   string
	Params      *AlgorithmParams
	Active      bool
	UserID      int64
	CreatedAt   time.Time
}

// NewAgent builds an active agent with a fresh UUID. Software agents must
// name their algorithm; params, when present, are validated.
func NewAgent(agentType AgentType, name, description, algorithm string, params *AlgorithmParams, userID int64) (AnalysisAgent, error) {
	if _, err := ParseAgentType(string(agentType)); err != nil {
		return AnalysisAgent{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return AnalysisAgent{}, fmt.Errorf("%w: agent name", ErrEmptyField)
	}
	if agentType == AgentSoftware && strings.TrimSpace(algorithm) == "" {
		return AnalysisAgent{}, fmt.Errorf("%w: software agent algorithm", ErrEmptyField)
	}
	if params != nil {
		if err := params.Validate(); err != nil {
			return AnalysisAgent{}, err
		}
	}
	return AnalysisAgent{
		ID:          uuid.New(),
		Type:        agentType,
		Name:        name,
		Description: description,
		Algorithm:   algorithm,
		Params:      params,
		Active:      true,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
