package httpapi

import (
	"net/http"

	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
)

type createRootVersionRequest struct {
	Period           string  `json:"period"`
	StartYear        *int    `json:"start_year"`
	EndYear          *int    `json:"end_year"`
	Meaning          string  `json:"meaning"`
	Fuzziness        float64 `json:"fuzziness"`
	CorpusSource     string  `json:"corpus_source"`
	SourceCitation   string  `json:"source_citation"`
	ExtractionMethod string  `json:"extraction_method"`
	CreatedBy        int64   `json:"created_by"`
}

func (s *Server) handleCreateRootVersion(w http.ResponseWriter, r *http.Request) {
	termID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req createRootVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.versions.CreateRoot(r.Context(), versionuc.RootInput{
		TermID:           termID,
		Period:           req.Period,
		StartYear:        req.StartYear,
		EndYear:          req.EndYear,
		Meaning:          req.Meaning,
		Fuzziness:        req.Fuzziness,
		CorpusSource:     req.CorpusSource,
		SourceCitation:   req.SourceCitation,
		ExtractionMethod: req.ExtractionMethod,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toVersionResponse(v))
}

type deriveVersionRequest struct {
	Period           string  `json:"period"`
	StartYear        *int    `json:"start_year"`
	EndYear          *int    `json:"end_year"`
	Meaning          string  `json:"meaning"`
	Fuzziness        float64 `json:"fuzziness"`
	DerivationType   string  `json:"derivation_type"`
	CorpusSource     string  `json:"corpus_source"`
	SourceCitation   string  `json:"source_citation"`
	ExtractionMethod string  `json:"extraction_method"`
	CreatedBy        int64   `json:"created_by"`
}

func (s *Server) handleDeriveVersion(w http.ResponseWriter, r *http.Request) {
	parentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req deriveVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.versions.Derive(r.Context(), versionuc.DeriveInput{
		ParentID:         parentID,
		Period:           req.Period,
		StartYear:        req.StartYear,
		EndYear:          req.EndYear,
		Meaning:          req.Meaning,
		Fuzziness:        req.Fuzziness,
		DerivationType:   req.DerivationType,
		CorpusSource:     req.CorpusSource,
		SourceCitation:   req.SourceCitation,
		ExtractionMethod: req.ExtractionMethod,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toVersionResponse(v))
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	v, err := s.versions.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toVersionResponse(v))
}

func (s *Server) handleCurrentVersion(w http.ResponseWriter, r *http.Request) {
	termID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	v, err := s.versions.Current(r.Context(), termID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toVersionResponse(v))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	termID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	out := []versionResponse{}
	for v, err := range s.versions.History(r.Context(), termID) {
		if err != nil {
			respondError(w, r, err)
			return
		}
		out = append(out, toVersionResponse(v))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.versions.SetCurrent(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type adjustFuzzinessRequest struct {
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	AdjustedBy int64   `json:"adjusted_by"`
}

func (s *Server) handleAdjustFuzziness(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req adjustFuzzinessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	adj, err := s.versions.AdjustScore(r.Context(), id, req.Score, req.Reason, req.AdjustedBy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAdjustmentResponse(adj))
}

func (s *Server) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	history, err := s.versions.Adjustments(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]adjustmentResponse, 0, len(history))
	for _, adj := range history {
		out = append(out, toAdjustmentResponse(adj))
	}
	respondJSON(w, http.StatusOK, out)
}
