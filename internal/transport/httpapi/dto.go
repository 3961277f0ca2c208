package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

type termResponse struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	Status         string    `json:"status"`
	ResearchDomain string    `json:"research_domain,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      int64     `json:"created_by"`
	UpdatedBy      int64     `json:"updated_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toTermResponse(t domain.Term) termResponse {
	return termResponse{
		ID:             t.ID,
		Text:           t.Text,
		Status:         string(t.Status),
		ResearchDomain: t.ResearchDomain,
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		UpdatedBy:      t.UpdatedBy,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

type versionResponse struct {
	ID                  uuid.UUID  `json:"id"`
	TermID              uuid.UUID  `json:"term_id"`
	Period              string     `json:"period"`
	StartYear           *int       `json:"start_year,omitempty"`
	EndYear             *int       `json:"end_year,omitempty"`
	Meaning             string     `json:"meaning"`
	Fuzziness           float64    `json:"fuzziness"`
	Confidence          string     `json:"confidence"`
	CorpusSource        string     `json:"corpus_source,omitempty"`
	SourceCitation      string     `json:"source_citation,omitempty"`
	ExtractionMethod    string     `json:"extraction_method,omitempty"`
	GeneratedAt         time.Time  `json:"generated_at"`
	DerivedFrom         *uuid.UUID `json:"derived_from,omitempty"`
	DerivationType      string     `json:"derivation_type,omitempty"`
	VersionNumber       int        `json:"version_number"`
	IsCurrent           bool       `json:"is_current"`
	NeighborhoodOverlap *float64   `json:"neighborhood_overlap,omitempty"`
	PositionalChange    *float64   `json:"positional_change,omitempty"`
	SimilarityReduction *float64   `json:"similarity_reduction,omitempty"`
	CreatedBy           int64      `json:"created_by"`
}

func toVersionResponse(v domain.TermVersion) versionResponse {
	return versionResponse{
		ID:                  v.ID,
		TermID:              v.TermID,
		Period:              v.Period,
		StartYear:           v.StartYear,
		EndYear:             v.EndYear,
		Meaning:             v.Meaning,
		Fuzziness:           v.Fuzziness.Float64(),
		Confidence:          string(v.Confidence),
		CorpusSource:        v.CorpusSource,
		SourceCitation:      v.SourceCitation,
		ExtractionMethod:    v.ExtractionMethod,
		GeneratedAt:         v.GeneratedAt,
		DerivedFrom:         v.DerivedFrom,
		DerivationType:      string(v.DerivationType),
		VersionNumber:       v.VersionNumber,
		IsCurrent:           v.IsCurrent,
		NeighborhoodOverlap: scoreFloat(v.Metrics.NeighborhoodOverlap),
		PositionalChange:    scoreFloat(v.Metrics.PositionalChange),
		SimilarityReduction: scoreFloat(v.Metrics.SimilarityReduction),
		CreatedBy:           v.CreatedBy,
	}
}

type anchorResponse struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Frequency   int        `json:"frequency"`
	FirstUsedIn *uuid.UUID `json:"first_used_in,omitempty"`
	LastUsedIn  *uuid.UUID `json:"last_used_in,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toAnchorResponse(a domain.ContextAnchor) anchorResponse {
	return anchorResponse{
		ID:          a.ID,
		Text:        a.Text,
		Frequency:   a.Frequency,
		FirstUsedIn: a.FirstUsedIn,
		LastUsedIn:  a.LastUsedIn,
		CreatedAt:   a.CreatedAt,
	}
}

type anchorLinkResponse struct {
	Anchor     anchorResponse `json:"anchor"`
	VersionID  uuid.UUID      `json:"version_id"`
	Similarity *float64       `json:"similarity,omitempty"`
	Rank       *int           `json:"rank,omitempty"`
}

func toAnchorLinkResponse(l domain.AnchorLink) anchorLinkResponse {
	return anchorLinkResponse{
		Anchor:     toAnchorResponse(l.Anchor),
		VersionID:  l.VersionID,
		Similarity: scoreFloat(l.Similarity),
		Rank:       l.Rank,
	}
}

type agentResponse struct {
	ID          uuid.UUID               `json:"id"`
	Type        string                  `json:"type"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Algorithm   string                  `json:"algorithm,omitempty"`
	Params      *domain.AlgorithmParams `json:"params,omitempty"`
	Active      bool                    `json:"active"`
	UserID      int64                   `json:"user_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

func toAgentResponse(a domain.AnalysisAgent) agentResponse {
	return agentResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		Name:        a.Name,
		Description: a.Description,
		Algorithm:   a.Algorithm,
		Params:      a.Params,
		Active:      a.Active,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
}

type activityResponse struct {
	ID               uuid.UUID               `json:"id"`
	Type             string                  `json:"type"`
	UsedVersion      uuid.UUID               `json:"used_version"`
	GeneratedVersion *uuid.UUID              `json:"generated_version,omitempty"`
	AgentID          uuid.UUID               `json:"agent_id"`
	StartPeriod      string                  `json:"start_period,omitempty"`
	EndPeriod        string                  `json:"end_period,omitempty"`
	Years            []int                   `json:"years,omitempty"`
	Algorithm        string                  `json:"algorithm,omitempty"`
	Params           *domain.AlgorithmParams `json:"params,omitempty"`
	StartedAt        time.Time               `json:"started_at"`
	EndedAt          *time.Time              `json:"ended_at,omitempty"`
	Status           string                  `json:"status"`
	DriftDetected    bool                    `json:"drift_detected"`
	Magnitude        *float64                `json:"magnitude,omitempty"`
	DriftType        string                  `json:"drift_type,omitempty"`
	Evidence         string                  `json:"evidence,omitempty"`
	CreatedBy        int64                   `json:"created_by"`
}

func toActivityResponse(a domain.DriftActivity) activityResponse {
	return activityResponse{
		ID:               a.ID,
		Type:             a.Type,
		UsedVersion:      a.UsedVersion,
		GeneratedVersion: a.GeneratedVersion,
		AgentID:          a.AgentID,
		StartPeriod:      a.StartPeriod,
		EndPeriod:        a.EndPeriod,
		Years:            a.Years,
		Algorithm:        a.Algorithm,
		Params:           a.Params,
		StartedAt:        a.StartedAt,
		EndedAt:          a.EndedAt,
		Status:           string(a.Status),
		DriftDetected:    a.DriftDetected,
		Magnitude:        scoreFloat(a.Magnitude),
		DriftType:        string(a.DriftType),
		Evidence:         a.Evidence,
		CreatedBy:        a.CreatedBy,
	}
}

type edgeResponse struct {
	ID          uuid.UUID         `json:"id"`
	EntityID    uuid.UUID         `json:"entity_id"`
	EntityType  string            `json:"entity_type"`
	DerivedFrom uuid.UUID         `json:"was_derived_from"`
	ActivityID  *uuid.UUID        `json:"derivation_activity,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toEdgeResponse(e domain.ProvenanceEdge) edgeResponse {
	return edgeResponse{
		ID:          e.ID,
		EntityID:    e.EntityID,
		EntityType:  string(e.EntityType),
		DerivedFrom: e.DerivedFrom,
		ActivityID:  e.ActivityID,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

type adjustmentResponse struct {
	ID            int64     `json:"id"`
	VersionID     uuid.UUID `json:"version_id"`
	OriginalScore float64   `json:"original_score"`
	AdjustedScore float64   `json:"adjusted_score"`
	Reason        string    `json:"reason"`
	AdjustedBy    int64     `json:"adjusted_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAdjustmentResponse(a domain.FuzzinessAdjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:            a.ID,
		VersionID:     a.VersionID,
		OriginalScore: a.OriginalScore.Float64(),
		AdjustedScore: a.AdjustedScore.Float64(),
		Reason:        a.Reason,
		AdjustedBy:    a.AdjustedBy,
		CreatedAt:     a.CreatedAt,
	}
}

func scoreFloat(s *domain.Score) *float64 {
	if s == nil {
		return nil
	}
	f := s.Float64()
	return &f
}
