package domain

import "fmt"

// Score is a bounded [0,1] value: fuzziness, similarity, drift magnitude and
// the per-version drift metrics all use it. The zero value is a valid score.
type Score float64

// NewScore validates v and returns it as a Score.
func NewScore(v float64) (Score, error) {
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidScore, v)
	}
	return Score(v), nil
}

// Float64 returns the score as a plain float64.
func (s Score) Float64() float64 { return float64(s) }

// ScorePtr validates v and returns a pointer, for optional score fields.
func ScorePtr(v float64) (*Score, error) {
	s, err := NewScore(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ConfidenceLevel is the categorical confidence of a term version.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceFor derives the categorical level from a fuzziness score
// (0 = certain, 1 = maximally uncertain).
func ConfidenceFor(fuzziness Score) ConfidenceLevel {
	switch {
	case fuzziness < 0.33:
		return ConfidenceHigh
	case fuzziness < 0.66:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseConfidenceLevel validates a confidence level string.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	switch ConfidenceLevel(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return ConfidenceLevel(s), nil
	}
	return "", fmt.Errorf("%w: confidence level %q", ErrInvalidEnum, s)
}
