package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
)

// VersionService manages temporal term versions and the fuzziness audit log.
type VersionService struct {
	svc *versionuc.Service
	obs *observer
}

// RootVersionInput holds the fields for a term's first version.
type RootVersionInput struct {
	TermID           uuid.UUID
	Period           string
	StartYear        *int
	EndYear          *int
	Meaning          string
	Fuzziness        float64
	CorpusSource     string
	SourceCitation   string
	ExtractionMethod string
	CreatedBy        int64
}

// DeriveVersionInput holds the fields for deriving a child version.
// DerivationType is one of "drift", "revision", "branch".
type DeriveVersionInput struct {
	ParentID         uuid.UUID
	Period           string
	StartYear        *int
	EndYear          *int
	Meaning          string
	Fuzziness        float64
	DerivationType   string
	CorpusSource     string
	SourceCitation   string
	ExtractionMethod string
	CreatedBy        int64
}

// CreateRoot snapshots a term's first meaning as version #1.
func (s *VersionService) CreateRoot(ctx context.Context, in RootVersionInput) (_ Version, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.create_root", start, err) }()

	v, err := s.svc.CreateRoot(ctx, versionuc.RootInput{
		TermID:           in.TermID,
		Period:           in.Period,
		StartYear:        in.StartYear,
		EndYear:          in.EndYear,
		Meaning:          in.Meaning,
		Fuzziness:        in.Fuzziness,
		CorpusSource:     in.CorpusSource,
		SourceCitation:   in.SourceCitation,
		ExtractionMethod: in.ExtractionMethod,
		CreatedBy:        in.CreatedBy,
	})
	if err != nil {
		return Version{}, fmt.Errorf("create root version: %w", err)
	}
	return fromInternalVersion(v), nil
}

// Derive creates the next version of the parent's term.
func (s *VersionService) Derive(ctx context.Context, in DeriveVersionInput) (_ Version, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.derive", start, err) }()

	v, err := s.svc.Derive(ctx, versionuc.DeriveInput{
		ParentID:         in.ParentID,
		Period:           in.Period,
		StartYear:        in.StartYear,
		EndYear:          in.EndYear,
		Meaning:          in.Meaning,
		Fuzziness:        in.Fuzziness,
		DerivationType:   in.DerivationType,
		CorpusSource:     in.CorpusSource,
		SourceCitation:   in.SourceCitation,
		ExtractionMethod: in.ExtractionMethod,
		CreatedBy:        in.CreatedBy,
	})
	if err != nil {
		return Version{}, fmt.Errorf("derive version: %w", err)
	}
	return fromInternalVersion(v), nil
}

// Get retrieves a version by id.
func (s *VersionService) Get(ctx context.Context, id uuid.UUID) (_ Version, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.get", start, err) }()

	v, err := s.svc.Get(ctx, id)
	if err != nil {
		return Version{}, fmt.Errorf("get version: %w", err)
	}
	return fromInternalVersion(v), nil
}

// Current retrieves the term's current version.
func (s *VersionService) Current(ctx context.Context, termID uuid.UUID) (_ Version, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.current", start, err) }()

	v, err := s.svc.Current(ctx, termID)
	if err != nil {
		return Version{}, fmt.Errorf("current version: %w", err)
	}
	return fromInternalVersion(v), nil
}

// History returns the term's versions ordered by version number, root first.
func (s *VersionService) History(ctx context.Context, termID uuid.UUID) (_ []Version, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.history", start, err) }()

	var out []Version
	for v, iterErr := range s.svc.History(ctx, termID) {
		if iterErr != nil {
			return nil, fmt.Errorf("version history: %w", iterErr)
		}
		out = append(out, fromInternalVersion(v))
	}
	return out, nil
}

// SetCurrent is the administrative override of the current flag.
func (s *VersionService) SetCurrent(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.set_current", start, err) }()

	if err = s.svc.SetCurrent(ctx, id); err != nil {
		return fmt.Errorf("set current version: %w", err)
	}
	return nil
}

// AdjustFuzziness replaces a version's fuzziness score, appending an audit
// row holding the replaced score and the reason.
func (s *VersionService) AdjustFuzziness(
	ctx context.Context, versionID uuid.UUID, newScore float64, reason string, adjustedBy int64,
) (_ Adjustment, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.adjust_fuzziness", start, err) }()

	adj, err := s.svc.AdjustScore(ctx, versionID, newScore, reason, adjustedBy)
	if err != nil {
		return Adjustment{}, fmt.Errorf("adjust fuzziness: %w", err)
	}
	return fromInternalAdjustment(adj), nil
}

// Adjustments returns a version's fuzziness audit log, oldest first.
func (s *VersionService) Adjustments(ctx context.Context, versionID uuid.UUID) (_ []Adjustment, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.adjustments", start, err) }()

	adjs, err := s.svc.Adjustments(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	out := make([]Adjustment, len(adjs))
	for i, a := range adjs {
		out[i] = fromInternalAdjustment(a)
	}
	return out, nil
}
