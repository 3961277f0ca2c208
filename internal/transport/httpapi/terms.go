package httpapi

import (
	"net/http"
)

type createTermRequest struct {
	Text           string `json:"text"`
	ResearchDomain string `json:"research_domain"`
	Notes          string `json:"notes"`
	CreatedBy      int64  `json:"created_by"`
}

func (s *Server) handleCreateTerm(w http.ResponseWriter, r *http.Request) {
	var req createTermRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := s.terms.Create(r.Context(), req.Text, req.ResearchDomain, req.Notes, req.CreatedBy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTermResponse(t))
}

func (s *Server) handleGetTerm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.terms.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTermResponse(t))
}

func (s *Server) handleListTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := s.terms.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]termResponse, 0, len(terms))
	for _, t := range terms {
		out = append(out, toTermResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

type updateTermStatusRequest struct {
	Status    string `json:"status"`
	UpdatedBy int64  `json:"updated_by"`
}

func (s *Server) handleUpdateTermStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateTermStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.terms.UpdateStatus(r.Context(), id, req.Status, req.UpdatedBy); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
