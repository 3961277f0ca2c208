package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DerivationType tags how a version relates to its parent.
type DerivationType string

const (
	// DerivationDrift marks a version produced by a drift-detection activity.
	DerivationDrift DerivationType = "drift"
	// DerivationRevision marks a manual re-authoring of the meaning.
	DerivationRevision DerivationType = "revision"
	// DerivationBranch marks an experimental lineage that does not take the
	// current flag from its parent.
	DerivationBranch DerivationType = "branch"
)

// ParseDerivationType validates a derivation type string.
func ParseDerivationType(s string) (DerivationType, error) {
	switch DerivationType(s) {
	case DerivationDrift, DerivationRevision, DerivationBranch:
		return DerivationType(s), nil
	}
	return "", fmt.Errorf("%w: derivation type %q", ErrInvalidEnum, s)
}

// RequiresLinearParent reports whether the derivation type demands that the
// parent still holds the current flag.
func (d DerivationType) RequiresLinearParent() bool { return d != DerivationBranch }

// TakesCurrentFlag reports whether the derived version becomes current.
func (d DerivationType) TakesCurrentFlag() bool { return d != DerivationBranch }

// DriftMetrics are the externally computed per-version drift metrics,
// populated only on versions produced by a completed drift activity.
type DriftMetrics struct {
	NeighborhoodOverlap *Score
	PositionalChange    *Score
	SimilarityReduction *Score
}

// TermVersion is a snapshot of a term's meaning at a named temporal period.
// Once other entities reference it as a derivation source its content fields
// are immutable; corrections go through the fuzziness adjustment log.
type TermVersion struct {
	ID               uuid.UUID
	TermID           uuid.UUID
	Period           string
	StartYear        *int
	EndYear          *int
	Meaning          string
	Fuzziness        Score
	Confidence       ConfidenceLevel
	CorpusSource     string
	SourceCitation   string
	ExtractionMethod string
	GeneratedAt      time.Time
	DerivedFrom      *uuid.UUID
	DerivationType   DerivationType
	VersionNumber    int
	IsCurrent        bool
	Metrics          DriftMetrics
	CreatedBy        int64
}

// NewRootVersion builds version #1 of a term with no parent.
func NewRootVersion(termID uuid.UUID, period, meaning string, fuzziness Score, createdBy int64) (TermVersion, error) {
	v, err := newVersion(termID, period, meaning, fuzziness, createdBy)
	if err != nil {
		return TermVersion{}, err
	}
	v.VersionNumber = 1
	v.IsCurrent = true
	return v, nil
}

// NewDerivedVersion builds a child version of parent. The version number and
// current flag are assigned by storage inside the derivation transaction.
func NewDerivedVersion(
	parent TermVersion, period, meaning string, fuzziness Score,
	derivation DerivationType, metrics DriftMetrics, createdBy int64,
) (TermVersion, error) {
	v, err := newVersion(parent.TermID, period, meaning, fuzziness, createdBy)
	if err != nil {
		return TermVersion{}, err
	}
	parentID := parent.ID
	v.DerivedFrom = &parentID
	v.DerivationType = derivation
	v.Metrics = metrics
	return v, nil
}

func newVersion(termID uuid.UUID, period, meaning string, fuzziness Score, createdBy int64) (TermVersion, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return TermVersion{}, fmt.Errorf("%w: temporal period", ErrEmptyField)
	}
	if strings.TrimSpace(meaning) == "" {
		return TermVersion{}, fmt.Errorf("%w: meaning description", ErrEmptyField)
	}
	return TermVersion{
		ID:          uuid.New(),
		TermID:      termID,
		Period:      period,
		Meaning:     meaning,
		Fuzziness:   fuzziness,
		Confidence:  ConfidenceFor(fuzziness),
		GeneratedAt: time.Now().UTC(),
		CreatedBy:   createdBy,
	}, nil
}
