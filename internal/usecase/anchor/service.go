package anchor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
	"github.com/diachron-labs/driftd/internal/metrics"
)

// Service handles the context anchor registry and version neighborhoods.
type Service struct {
	repo Repository
}

// New creates an anchor service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Attach associates an anchor with a version, creating the anchor on first
// use. Text is normalized, so "Young" and "young " are the same anchor.
func (s *Service) Attach(ctx context.Context, versionID uuid.UUID, text string, similarity *float64, rank *int) (domain.AnchorLink, error) {
	normalized, err := domain.NormalizeAnchorText(text)
	if err != nil {
		return domain.AnchorLink{}, err
	}
	var score *domain.Score
	if similarity != nil {
		score, err = domain.ScorePtr(*similarity)
		if err != nil {
			return domain.AnchorLink{}, fmt.Errorf("similarity: %w", err)
		}
	}
	if err := domain.ValidateRank(rank); err != nil {
		return domain.AnchorLink{}, err
	}

	link, err := s.repo.Attach(ctx, versionID, normalized, score, rank)
	if err != nil {
		return domain.AnchorLink{}, fmt.Errorf("attach anchor: %w", err)
	}
	metrics.AnchorAttachesTotal.Inc()
	return link, nil
}

// Detach removes an association, decrementing the anchor's frequency.
func (s *Service) Detach(ctx context.Context, versionID, anchorID uuid.UUID) error {
	if err := s.repo.Detach(ctx, versionID, anchorID); err != nil {
		return fmt.Errorf("detach anchor: %w", err)
	}
	return nil
}

// Neighborhood returns a version's anchors ordered by rank, then similarity.
func (s *Service) Neighborhood(ctx context.Context, versionID uuid.UUID) ([]domain.AnchorLink, error) {
	links, err := s.repo.Neighborhood(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: %w", err)
	}
	return links, nil
}

// Vocabulary returns the global anchor catalogue ranked by frequency.
func (s *Service) Vocabulary(ctx context.Context, limit int) ([]domain.ContextAnchor, error) {
	anchors, err := s.repo.Vocabulary(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}
	return anchors, nil
}

// GetByText looks an anchor up by its normalized text.
func (s *Service) GetByText(ctx context.Context, text string) (domain.ContextAnchor, error) {
	normalized, err := domain.NormalizeAnchorText(text)
	if err != nil {
		return domain.ContextAnchor{}, err
	}
	a, err := s.repo.GetByText(ctx, normalized)
	if err != nil {
		return domain.ContextAnchor{}, fmt.Errorf("get anchor: %w", err)
	}
	return a, nil
}
