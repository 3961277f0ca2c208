package httpapi

import (
	"net/http"

	"github.com/diachron-labs/driftd/internal/domain"
	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
)

type registerAgentRequest struct {
	Type        string                  `json:"type"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Algorithm   string                  `json:"algorithm"`
	Params      *domain.AlgorithmParams `json:"params"`
	UserID      int64                   `json:"user_id"`
}

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := s.agents.Register(r.Context(), agentuc.RegisterInput{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Algorithm:   req.Algorithm,
		Params:      req.Params,
		UserID:      req.UserID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAgentResponse(a))
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.agents.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAgentResponse(a))
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	agents, err := s.agents.List(r.Context(), activeOnly)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, toAgentResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

type setAgentActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetAgentActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req setAgentActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.agents.SetActive(r.Context(), id, req.Active); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
