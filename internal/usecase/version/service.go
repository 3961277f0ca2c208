package version

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
	"github.com/diachron-labs/driftd/internal/metrics"
)

// Service handles the version store: root creation, derivation, the current
// flag and the fuzziness adjustment log.
type Service struct {
	repo        Repository
	adjustments AdjustmentRepository
}

// New creates a version service.
func New(repo Repository, adjustments AdjustmentRepository) *Service {
	return &Service{repo: repo, adjustments: adjustments}
}

// RootInput is the request to snapshot a term's first meaning.
type RootInput struct {
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

// DeriveInput is the request to derive a child version from a parent.
type DeriveInput struct {
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

// CreateRoot validates and stores version #1 of a term.
func (s *Service) CreateRoot(ctx context.Context, in RootInput) (domain.TermVersion, error) {
	fuzziness, err := domain.NewScore(in.Fuzziness)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("fuzziness: %w", err)
	}
	v, err := domain.NewRootVersion(in.TermID, in.Period, in.Meaning, fuzziness, in.CreatedBy)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("validate version: %w", err)
	}
	applyProvenanceFields(&v, in.StartYear, in.EndYear, in.CorpusSource, in.SourceCitation, in.ExtractionMethod)

	if err := s.repo.CreateRoot(ctx, v); err != nil {
		return domain.TermVersion{}, fmt.Errorf("create root version: %w", err)
	}
	metrics.VersionsCreatedTotal.WithLabelValues("root").Inc()
	return v, nil
}

// Derive validates and stores a child version. The repository performs the
// linearity check, the cycle check and the atomic current-flag flip.
func (s *Service) Derive(ctx context.Context, in DeriveInput) (domain.TermVersion, error) {
	derivation, err := domain.ParseDerivationType(in.DerivationType)
	if err != nil {
		return domain.TermVersion{}, err
	}
	fuzziness, err := domain.NewScore(in.Fuzziness)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("fuzziness: %w", err)
	}

	parent, err := s.repo.Get(ctx, in.ParentID)
	if errors.Is(err, domain.ErrVersionNotFound) {
		return domain.TermVersion{}, fmt.Errorf("parent %s: %w", in.ParentID, domain.ErrParentNotFound)
	}
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("get parent: %w", err)
	}

	draft, err := domain.NewDerivedVersion(parent, in.Period, in.Meaning, fuzziness,
		derivation, domain.DriftMetrics{}, in.CreatedBy)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("validate version: %w", err)
	}
	applyProvenanceFields(&draft, in.StartYear, in.EndYear, in.CorpusSource, in.SourceCitation, in.ExtractionMethod)

	v, err := s.repo.Derive(ctx, draft)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("derive version: %w", err)
	}
	metrics.VersionsCreatedTotal.WithLabelValues(in.DerivationType).Inc()
	return v, nil
}

// SetCurrent is the administrative override of the current flag.
func (s *Service) SetCurrent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetCurrent(ctx, id); err != nil {
		return fmt.Errorf("set current version: %w", err)
	}
	return nil
}

// Get retrieves a version by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.TermVersion, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// Current retrieves the term's current version.
func (s *Service) Current(ctx context.Context, termID uuid.UUID) (domain.TermVersion, error) {
	v, err := s.repo.Current(ctx, termID)
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("current version: %w", err)
	}
	return v, nil
}

// History yields a term's versions ordered by version number, root first.
func (s *Service) History(ctx context.Context, termID uuid.UUID) iter.Seq2[domain.TermVersion, error] {
	return s.repo.History(ctx, termID)
}

// AdjustScore corrects a version's fuzziness score through the append-only
// audit log. Content fields stay immutable; only the score moves.
func (s *Service) AdjustScore(ctx context.Context, versionID uuid.UUID, newScore float64, reason string, adjustedBy int64) (domain.FuzzinessAdjustment, error) {
	score, err := domain.NewScore(newScore)
	if err != nil {
		return domain.FuzzinessAdjustment{}, fmt.Errorf("adjusted score: %w", err)
	}
	if err := domain.ValidateAdjustmentReason(reason); err != nil {
		return domain.FuzzinessAdjustment{}, err
	}
	adj, err := s.adjustments.Adjust(ctx, versionID, score, reason, adjustedBy)
	if err != nil {
		return domain.FuzzinessAdjustment{}, fmt.Errorf("adjust score: %w", err)
	}
	metrics.AdjustmentsTotal.Inc()
	return adj, nil
}

// Adjustments returns a version's adjustment history, oldest first.
func (s *Service) Adjustments(ctx context.Context, versionID uuid.UUID) ([]domain.FuzzinessAdjustment, error) {
	history, err := s.adjustments.ListForVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return history, nil
}

func applyProvenanceFields(v *domain.TermVersion, startYear, endYear *int, corpusSource, sourceCitation, extractionMethod string) {
	v.StartYear = startYear
	v.EndYear = endYear
	v.CorpusSource = corpusSource
	v.SourceCitation = sourceCitation
	v.ExtractionMethod = extractionMethod
}
