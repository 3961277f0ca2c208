package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextAnchor is a vocabulary item functioning as a distributional neighbor
// for some term version. Frequency always equals the number of live
// associations referencing the anchor; rows are retained at frequency zero.
type ContextAnchor struct {
	ID          uuid.UUID
	Text        string
	Frequency   int
	FirstUsedIn *uuid.UUID
	LastUsedIn  *uuid.UUID
	CreatedAt   time.Time
}

// NormalizeAnchorText trims and lowercases anchor text, rejecting empties.
func NormalizeAnchorText(text string) (string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", fmt.Errorf("%w: anchor text", ErrEmptyField)
	}
	return text, nil
}

// AnchorLink is one entry of a version's neighborhood: the anchor plus the
// association's similarity and rank.
type AnchorLink struct {
	Anchor     ContextAnchor
	VersionID  uuid.UUID
	Similarity *Score
	Rank       *int
}

// ValidateRank rejects non-positive neighborhood ranks.
func ValidateRank(rank *int) error {
	if rank != nil && *rank < 1 {
		return fmt.Errorf("%w: rank %d must be >= 1", ErrValidation, *rank)
	}
	return nil
}
