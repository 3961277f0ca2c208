package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagnitude_Bounds(t *testing.T) {
	p := DefaultMagnitudePolicy()
	assert.Equal(t, Score(0), p.Magnitude(0, 0, 0))
	assert.InDelta(t, 1.0, p.Magnitude(1, 1, 1).Float64(), 1e-9)
}

func TestMagnitude_MonotonicInEachInput(t *testing.T) {
	p := DefaultMagnitudePolicy()
	base := p.Magnitude(0.4, 0.4, 0.4)
	assert.Greater(t, p.Magnitude(0.5, 0.4, 0.4).Float64(), base.Float64())
	assert.Greater(t, p.Magnitude(0.4, 0.5, 0.4).Float64(), base.Float64())
	assert.Greater(t, p.Magnitude(0.4, 0.4, 0.5).Float64(), base.Float64())
}

func TestMagnitude_Idempotent(t *testing.T) {
	p := DefaultMagnitudePolicy()
	first := p.Magnitude(0.21, 0.73, 0.08)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Magnitude(0.21, 0.73, 0.08))
	}
}

func TestDetected_Threshold(t *testing.T) {
	p := MagnitudePolicy{OverlapWeight: 1, Threshold: 0.3}
	assert.False(t, p.Detected(0.29))
	assert.True(t, p.Detected(0.3))
	assert.True(t, p.Detected(0.42))
}

func TestMagnitudePolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultMagnitudePolicy().Validate())

	bad := MagnitudePolicy{OverlapWeight: -1, PositionalWeight: 1, ReductionWeight: 1, Threshold: 0.5}
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	zero := MagnitudePolicy{Threshold: 0.5}
	assert.ErrorIs(t, zero.Validate(), ErrValidation)

	thresh := MagnitudePolicy{OverlapWeight: 1, Threshold: 1.5}
	assert.ErrorIs(t, thresh.Validate(), ErrInvalidScore)
}
