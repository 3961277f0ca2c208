package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FuzzinessAdjustment is an append-only audit record of a manual correction
// to a version's confidence score. The version's live score is updated in the
// same transaction that appends this row.
type FuzzinessAdjustment struct {
	ID            int64
	VersionID     uuid.UUID
	OriginalScore Score
	AdjustedScore Score
	Reason        string
	AdjustedBy    int64
	CreatedAt     time.Time
}

// ValidateAdjustmentReason rejects empty adjustment reasons.
func ValidateAdjustmentReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: adjustment reason", ErrEmptyField)
	}
	return nil
}
