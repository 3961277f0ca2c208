package term

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Service handles the term catalogue.
type Service struct {
	repo Repository
}

// New creates a term service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new term.
func (s *Service) Create(ctx context.Context, text, researchDomain, notes string, createdBy int64) (domain.Term, error) {
	t, err := domain.NewTerm(text, researchDomain, notes, createdBy)
	if err != nil {
		return domain.Term{}, fmt.Errorf("validate term: %w", err)
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return domain.Term{}, fmt.Errorf("create term: %w", err)
	}
	return t, nil
}

// Get retrieves a term by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Term, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Term{}, fmt.Errorf("get term: %w", err)
	}
	return t, nil
}

// List returns terms, optionally filtered by lifecycle status.
func (s *Service) List(ctx context.Context, status string) ([]domain.Term, error) {
	var filter domain.TermStatus
	if status != "" {
		parsed, err := domain.ParseTermStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	terms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// UpdateStatus moves a term to a new lifecycle status. Deprecation is the
// only form of deletion.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy int64) error {
	parsed, err := domain.ParseTermStatus(status)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, parsed, updatedBy); err != nil {
		return fmt.Errorf("update term status: %w", err)
	}
	return nil
}
