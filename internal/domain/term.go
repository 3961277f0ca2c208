package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TermStatus is the lifecycle status of a term.
type TermStatus string

const (
	TermActive      TermStatus = "active"
	TermProvisional TermStatus = "provisional"
	TermDeprecated  TermStatus = "deprecated"
)

// ParseTermStatus validates a term status string.
func ParseTermStatus(s string) (TermStatus, error) {
	switch TermStatus(s) {
	case TermActive, TermProvisional, TermDeprecated:
		return TermStatus(s), nil
	}
	return "", fmt.Errorf("%w: term status %q", ErrInvalidEnum, s)
}

// Term is a canonical lexical item under study. Terms are never hard-deleted;
// retirement moves the status to deprecated.
type Term struct {
	ID             uuid.UUID
	Text           string
	Status         TermStatus
	ResearchDomain string
	Notes          string
	CreatedBy      int64
	UpdatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewTerm builds a term with a fresh UUID in active status.
// Text uniqueness per creator is enforced by storage.
func NewTerm(text, researchDomain, notes string, createdBy int64) (Term, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Term{}, fmt.Errorf("%w: term text", ErrEmptyField)
	}
	now := time.Now().UTC()
	return Term{
		ID:             uuid.New(),
		Text:           text,
		Status:         TermActive,
		ResearchDomain: researchDomain,
		Notes:          notes,
		CreatedBy:      createdBy,
		UpdatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
