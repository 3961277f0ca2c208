package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
)

type startActivityRequest struct {
	UsedVersion uuid.UUID               `json:"used_version"`
	AgentID     uuid.UUID               `json:"agent_id"`
	StartPeriod string                  `json:"start_period"`
	EndPeriod   string                  `json:"end_period"`
	Algorithm   string                  `json:"algorithm"`
	Params      *domain.AlgorithmParams `json:"params"`
	Years       []int                   `json:"years"`
	CreatedBy   int64                   `json:"created_by"`
}

func (s *Server) handleStartActivity(w http.ResponseWriter, r *http.Request) {
	var req startActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := s.drift.Start(r.Context(), driftuc.StartInput{
		UsedVersion: req.UsedVersion,
		AgentID:     req.AgentID,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
		Algorithm:   req.Algorithm,
		Params:      req.Params,
		Years:       req.Years,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toActivityResponse(a))
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := s.drift.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toActivityResponse(a))
}

type completeActivityRequest struct {
	GeneratedVersion    uuid.UUID `json:"generated_version"`
	Magnitude           *float64  `json:"magnitude"`
	NeighborhoodOverlap *float64  `json:"neighborhood_overlap"`
	PositionalChange    *float64  `json:"positional_change"`
	SimilarityReduction *float64  `json:"similarity_reduction"`
	DriftType           string    `json:"drift_type"`
	Evidence            string    `json:"evidence"`
}

func (req completeActivityRequest) metrics(w http.ResponseWriter, r *http.Request) (*domain.DriftMetrics, bool) {
	if req.NeighborhoodOverlap == nil && req.PositionalChange == nil && req.SimilarityReduction == nil {
		return nil, true
	}
	var (
		m   domain.DriftMetrics
		err error
	)
	if req.NeighborhoodOverlap != nil {
		if m.NeighborhoodOverlap, err = domain.ScorePtr(*req.NeighborhoodOverlap); err != nil {
			respondError(w, r, err)
			return nil, false
		}
	}
	if req.PositionalChange != nil {
		if m.PositionalChange, err = domain.ScorePtr(*req.PositionalChange); err != nil {
			respondError(w, r, err)
			return nil, false
		}
	}
	if req.SimilarityReduction != nil {
		if m.SimilarityReduction, err = domain.ScorePtr(*req.SimilarityReduction); err != nil {
			respondError(w, r, err)
			return nil, false
		}
	}
	return &m, true
}

func (s *Server) handleCompleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req completeActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, ok := req.metrics(w, r)
	if !ok {
		return
	}
	a, err := s.drift.Complete(r.Context(), driftuc.CompleteInput{
		ActivityID:       id,
		GeneratedVersion: req.GeneratedVersion,
		Magnitude:        req.Magnitude,
		Metrics:          m,
		DriftType:        req.DriftType,
		Evidence:         req.Evidence,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toActivityResponse(a))
}

type failActivityRequest struct {
	Error string `json:"error"`
}

func (s *Server) handleFailActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req failActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.drift.Fail(r.Context(), id, req.Error); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkProvisional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.drift.MarkProvisional(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleStaleActivities(w http.ResponseWriter, r *http.Request) {
	stale, err := s.drift.Stale(r.Context(), s.staleAfter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]activityResponse, 0, len(stale))
	for _, a := range stale {
		out = append(out, toActivityResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}
