package httpapi

import (
	"net/http"
	"strconv"
)

type attachAnchorRequest struct {
	Text       string   `json:"text"`
	Similarity *float64 `json:"similarity"`
	Rank       *int     `json:"rank"`
}

func (s *Server) handleAttachAnchor(w http.ResponseWriter, r *http.Request) {
	versionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req attachAnchorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := s.anchors.Attach(r.Context(), versionID, req.Text, req.Similarity, req.Rank)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAnchorLinkResponse(link))
}

func (s *Server) handleDetachAnchor(w http.ResponseWriter, r *http.Request) {
	versionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	anchorID, ok := pathUUID(w, r, "anchorID")
	if !ok {
		return
	}
	if err := s.anchors.Detach(r.Context(), versionID, anchorID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleNeighborhood(w http.ResponseWriter, r *http.Request) {
	versionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	links, err := s.anchors.Neighborhood(r.Context(), versionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]anchorLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, toAnchorLinkResponse(l))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	anchors, err := s.anchors.Vocabulary(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]anchorResponse, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, toAnchorResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}
