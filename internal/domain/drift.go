package domain

import "fmt"

// MagnitudePolicy turns the three per-version drift metrics into the single
// scalar drift magnitude, and thresholds it into the detected flag. The
// combination is a normalized weighted mean, so it is monotonic in each
// input and idempotent for the same inputs.
type MagnitudePolicy struct {
	OverlapWeight    float64
	PositionalWeight float64
	ReductionWeight  float64
	Threshold        float64
}

// DefaultMagnitudePolicy weights neighborhood-overlap loss highest, matching
// the usual behavior of neighborhood-based drift detectors.
func DefaultMagnitudePolicy() MagnitudePolicy {
	return MagnitudePolicy{
		OverlapWeight:    0.5,
		PositionalWeight: 0.25,
		ReductionWeight:  0.25,
		Threshold:        0.3,
	}
}

// Validate rejects non-positive weight sums and out-of-range thresholds.
func (p MagnitudePolicy) Validate() error {
	if p.OverlapWeight < 0 || p.PositionalWeight < 0 || p.ReductionWeight < 0 {
		return fmt.Errorf("%w: magnitude weights must be non-negative", ErrValidation)
	}
	if p.OverlapWeight+p.PositionalWeight+p.ReductionWeight <= 0 {
		return fmt.Errorf("%w: magnitude weights sum to zero", ErrValidation)
	}
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: drift threshold %v", ErrInvalidScore, p.Threshold)
	}
	return nil
}

// Magnitude combines overlap loss, positional change and similarity
// reduction into one [0,1] scalar.
func (p MagnitudePolicy) Magnitude(overlapLoss, positionalChange, similarityReduction Score) Score {
	total := p.OverlapWeight + p.PositionalWeight + p.ReductionWeight
	weighted := p.OverlapWeight*overlapLoss.Float64() +
		p.PositionalWeight*positionalChange.Float64() +
		p.ReductionWeight*similarityReduction.Float64()
	return Score(weighted / total)
}

// Detected thresholds a magnitude into the drift-detected flag.
func (p MagnitudePolicy) Detected(magnitude Score) bool {
	return magnitude.Float64() >= p.Threshold
}
