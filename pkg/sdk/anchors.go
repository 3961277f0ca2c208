package driftd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	anchoruc "github.com/diachron-labs/driftd/internal/usecase/anchor"
)

// AnchorService manages the shared context anchor vocabulary.
type AnchorService struct {
	svc *anchoruc.Service
	obs *observer
}

// Attach associates an anchor word with a version, creating the anchor on
// first use. Text is normalized (trimmed, lowercased) before lookup.
func (s *AnchorService) Attach(
	ctx context.Context, versionID uuid.UUID, text string, similarity *float64, rank *int,
) (_ AnchorLink, err error) {
	start := time.Now()
	defer func() { s.obs.observe("anchor.attach", start, err) }()

	link, err := s.svc.Attach(ctx, versionID, text, similarity, rank)
	if err != nil {
		return AnchorLink{}, fmt.Errorf("attach anchor: %w", err)
	}
	return fromInternalLink(link), nil
}

// Detach removes an anchor's association with a version, decrementing its
// frequency.
func (s *AnchorService) Detach(ctx context.Context, versionID, anchorID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("anchor.detach", start, err) }()

	if err = s.svc.Detach(ctx, versionID, anchorID); err != nil {
		return fmt.Errorf("detach anchor: %w", err)
	}
	return nil
}

// Neighborhood returns a version's anchors ordered by rank.
func (s *AnchorService) Neighborhood(ctx context.Context, versionID uuid.UUID) (_ []AnchorLink, err error) {
	start := time.Now()
	defer func() { s.obs.observe("anchor.neighborhood", start, err) }()

	links, err := s.svc.Neighborhood(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("anchor neighborhood: %w", err)
	}
	out := make([]AnchorLink, len(links))
	for i, l := range links {
		out[i] = fromInternalLink(l)
	}
	return out, nil
}

// Vocabulary returns the most frequent anchors, limited to limit entries
// (0 for all).
func (s *AnchorService) Vocabulary(ctx context.Context, limit int) (_ []Anchor, err error) {
	start := time.Now()
	defer func() { s.obs.observe("anchor.vocabulary", start, err) }()

	anchors, err := s.svc.Vocabulary(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("anchor vocabulary: %w", err)
	}
	out := make([]Anchor, len(anchors))
	for i, a := range anchors {
		out[i] = fromInternalAnchor(a)
	}
	return out, nil
}

// Get retrieves an anchor by its normalized text.
func (s *AnchorService) Get(ctx context.Context, text string) (_ Anchor, err error) {
	start := time.Now()
	defer func() { s.obs.observe("anchor.get", start, err) }()

	a, err := s.svc.GetByText(ctx, text)
	if err != nil {
		return Anchor{}, fmt.Errorf("get anchor: %w", err)
	}
	return fromInternalAnchor(a), nil
}
