package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	termuc "github.com/diachron-labs/driftd/internal/usecase/term"
)

// TermService manages the term catalogue.
type TermService struct {
	svc *termuc.Service
	obs *observer
}

// TermInput holds the fields for creating a term.
type TermInput struct {
	Text           string
	ResearchDomain string
	Notes          string
	CreatedBy      int64
}

// Create catalogues a new term. The text must be unique per creator.
func (s *TermService) Create(ctx context.Context, in TermInput) (_ Term, err error) {
	start := time.Now()
	defer func() { s.obs.observe("term.create", start, err) }()

	t, err := s.svc.Create(ctx, in.Text, in.ResearchDomain, in.Notes, in.CreatedBy)
	if err != nil {
		return Term{}, fmt.Errorf("create term: %w", err)
	}
	return fromInternalTerm(t), nil
}

// Get retrieves a term by id.
func (s *TermService) Get(ctx context.Context, id uuid.UUID) (_ Term, err error) {
	start := time.Now()
	defer func() { s.obs.observe("term.get", start, err) }()

	t, err := s.svc.Get(ctx, id)
	if err != nil {
		return Term{}, fmt.Errorf("get term: %w", err)
	}
	return fromInternalTerm(t), nil
}

// List returns terms, optionally filtered by status
// ("active", "provisional", "deprecated"; empty for all).
func (s *TermService) List(ctx context.Context, status string) (_ []Term, err error) {
	start := time.Now()
	defer func() { s.obs.observe("term.list", start, err) }()

	terms, err := s.svc.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = fromInternalTerm(t)
	}
	return out, nil
}

// UpdateStatus moves a term through its lifecycle.
func (s *TermService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("term.update_status", start, err) }()

	if err = s.svc.UpdateStatus(ctx, id, status, updatedBy); err != nil {
		return fmt.Errorf("update term status: %w", err)
	}
	return nil
}
