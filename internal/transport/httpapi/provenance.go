package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type recordDerivationRequest struct {
	EntityID    uuid.UUID         `json:"entity_id"`
	EntityType  string            `json:"entity_type"`
	DerivedFrom uuid.UUID         `json:"was_derived_from"`
	ActivityID  *uuid.UUID        `json:"derivation_activity"`
	Metadata    map[string]string `json:"metadata"`
}

func (s *Server) handleRecordDerivation(w http.ResponseWriter, r *http.Request) {
	var req recordDerivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	edge, err := s.provenance.Record(r.Context(), req.EntityID, req.EntityType,
		req.DerivedFrom, req.ActivityID, req.Metadata)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEdgeResponse(edge))
}

func (s *Server) handleGetDerivation(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathUUID(w, r, "entityID")
	if !ok {
		return
	}
	edge, err := s.provenance.Get(r.Context(), chi.URLParam(r, "entityType"), entityID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEdgeResponse(edge))
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathUUID(w, r, "entityID")
	if !ok {
		return
	}
	seq, err := s.provenance.Lineage(r.Context(), chi.URLParam(r, "entityType"), entityID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := []edgeResponse{}
	for edge, err := range seq {
		if err != nil {
			respondError(w, r, err)
			return
		}
		out = append(out, toEdgeResponse(edge))
	}
	respondJSON(w, http.StatusOK, out)
}
