package driftd

import (
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// AlgorithmParams is the typed configuration of an analysis algorithm.
type AlgorithmParams = domain.AlgorithmParams

// Algorithm families understood by the engine.
const (
	FamilyFrequencyBaseline   = domain.FamilyFrequencyBaseline
	FamilyEmbeddingAlignment  = domain.FamilyEmbeddingAlignment
	FamilyNeighborhoodJaccard = domain.FamilyNeighborhoodJaccard
)

// Term is a catalogued research term.
type Term struct {
	ID             uuid.UUID
	Text           string
	Status         string
	ResearchDomain string
	Notes          string
	CreatedBy      int64
	UpdatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func fromInternalTerm(t domain.Term) Term {
	return Term{
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

// Version is one temporal meaning of a term.
type Version struct {
	ID               uuid.UUID
	TermID           uuid.UUID
	Period           string
	StartYear        *int
	EndYear          *int
	Meaning          string
	Fuzziness        float64
	Confidence       string
	CorpusSource     string
	SourceCitation   string
	ExtractionMethod string
	GeneratedAt      time.Time
	DerivedFrom      *uuid.UUID
	DerivationType   string
	VersionNumber    int
	IsCurrent        bool
	Metrics          DriftMetrics
	CreatedBy        int64
}

// DriftMetrics are the per-metric drift measurements; nil means not measured.
type DriftMetrics struct {
	NeighborhoodOverlap *float64
	PositionalChange    *float64
	SimilarityReduction *float64
}

func fromInternalVersion(v domain.TermVersion) Version {
	return Version{
		ID:               v.ID,
		TermID:           v.TermID,
		Period:           v.Period,
		StartYear:        v.StartYear,
		EndYear:          v.EndYear,
		Meaning:          v.Meaning,
		Fuzziness:        v.Fuzziness.Float64(),
		Confidence:       string(v.Confidence),
		CorpusSource:     v.CorpusSource,
		SourceCitation:   v.SourceCitation,
		ExtractionMethod: v.ExtractionMethod,
		GeneratedAt:      v.GeneratedAt,
		DerivedFrom:      v.DerivedFrom,
		DerivationType:   string(v.DerivationType),
		VersionNumber:    v.VersionNumber,
		IsCurrent:        v.IsCurrent,
		Metrics:          fromInternalMetrics(v.Metrics),
		CreatedBy:        v.CreatedBy,
	}
}

func fromInternalMetrics(m domain.DriftMetrics) DriftMetrics {
	return DriftMetrics{
		NeighborhoodOverlap: scoreFloat(m.NeighborhoodOverlap),
		PositionalChange:    scoreFloat(m.PositionalChange),
		SimilarityReduction: scoreFloat(m.SimilarityReduction),
	}
}

// Anchor is a vocabulary word shared across version neighborhoods.
type Anchor struct {
	ID          uuid.UUID
	Text        string
	Frequency   int
	FirstUsedIn *uuid.UUID
	LastUsedIn  *uuid.UUID
	CreatedAt   time.Time
}

func fromInternalAnchor(a domain.ContextAnchor) Anchor {
	return Anchor{
		ID:          a.ID,
		Text:        a.Text,
		Frequency:   a.Frequency,
		FirstUsedIn: a.FirstUsedIn,
		LastUsedIn:  a.LastUsedIn,
		CreatedAt:   a.CreatedAt,
	}
}

// AnchorLink is an anchor's association with one version.
type AnchorLink struct {
	Anchor     Anchor
	VersionID  uuid.UUID
	Similarity *float64
	Rank       *int
}

func fromInternalLink(l domain.AnchorLink) AnchorLink {
	return AnchorLink{
		Anchor:     fromInternalAnchor(l.Anchor),
		VersionID:  l.VersionID,
		Similarity: scoreFloat(l.Similarity),
		Rank:       l.Rank,
	}
}

// Agent is a registered analysis agent.
type Agent struct {
	ID          uuid.UUID
	Type        string
	Name        string
	Description string
	Algorithm   string
	Params      *AlgorithmParams
	Active      bool
	UserID      int64
	CreatedAt   time.Time
}

func fromInternalAgent(a domain.AnalysisAgent) Agent {
	return Agent{
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

// Activity is one drift analysis run.
type Activity struct {
	ID               uuid.UUID
	Type             string
	UsedVersion      uuid.UUID
	GeneratedVersion *uuid.UUID
	AgentID          uuid.UUID
	StartPeriod      string
	EndPeriod        string
	Years            []int
	Algorithm        string
	Params           *AlgorithmParams
	StartedAt        time.Time
	EndedAt          *time.Time
	Status           string
	DriftDetected    bool
	Magnitude        *float64
	DriftType        string
	Evidence         string
	CreatedBy        int64
}

func fromInternalActivity(a domain.DriftActivity) Activity {
	return Activity{
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

// Edge is one derivation link in a provenance chain.
type Edge struct {
	ID          uuid.UUID
	EntityID    uuid.UUID
	EntityType  string
	DerivedFrom uuid.UUID
	ActivityID  *uuid.UUID
	Metadata    map[string]string
	CreatedAt   time.Time
}

func fromInternalEdge(e domain.ProvenanceEdge) Edge {
	return Edge{
		ID:          e.ID,
		EntityID:    e.EntityID,
		EntityType:  string(e.EntityType),
		DerivedFrom: e.DerivedFrom,
		ActivityID:  e.ActivityID,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

// Adjustment is one entry in a version's fuzziness audit log.
type Adjustment struct {
	ID            int64
	VersionID     uuid.UUID
	OriginalScore float64
	AdjustedScore float64
	Reason        string
	AdjustedBy    int64
	CreatedAt     time.Time
}

func fromInternalAdjustment(a domain.FuzzinessAdjustment) Adjustment {
	return Adjustment{
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
