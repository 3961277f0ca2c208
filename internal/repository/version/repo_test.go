package version

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diachron-labs/driftd/internal/domain"
)

func TestCreateRoot(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v := makeRoot(t, repo, term, "2025", 0.5)

	got, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VersionNumber)
	assert.True(t, got.IsCurrent)
	assert.Nil(t, got.DerivedFrom)
	assert.Equal(t, domain.ConfidenceMedium, got.Confidence)
}

func TestCreateRoot_TermMissing(t *testing.T) {
	repo, _ := newFixture(t)

	v, err := domain.NewRootVersion(uuid.New(), "2025", "meaning", 0.5, 1)
	require.NoError(t, err)
	err = repo.CreateRoot(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrTermNotFound)
}

func TestCreateRoot_SecondRootRejected(t *testing.T) {
	repo, term := newFixture(t)

	makeRoot(t, repo, term, "2025", 0.5)

	v, err := domain.NewRootVersion(term.ID, "2026", "meaning", 0.5, 1)
	require.NoError(t, err)
	err = repo.CreateRoot(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestDerive_FlipsCurrentAtomically(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	v2 := derive(t, repo, v1, "2026", domain.DerivationDrift)

	assert.Equal(t, 2, v2.VersionNumber)
	assert.True(t, v2.IsCurrent)

	got1, err := repo.Get(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, got1.IsCurrent, "parent must be superseded")

	current, err := repo.Current(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)
}

func TestDerive_ParentNotFound(t *testing.T) {
	repo, term := newFixture(t)

	ghost := domain.TermVersion{ID: uuid.New(), TermID: term.ID}
	v, err := domain.NewDerivedVersion(ghost, "2026", "meaning", 0.4, domain.DerivationDrift, domain.DriftMetrics{}, 1)
	require.NoError(t, err)

	_, err = repo.Derive(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
	assert.ErrorIs(t, err, domain.ErrReferential)
}

func TestDerive_ParentSuperseded(t *testing.T) {
	repo, term := newFixture(t)

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	derive(t, repo, v1, "2026", domain.DerivationDrift)

	// v1 no longer holds the current flag; linear derivation must refuse it.
	v3, err := domain.NewDerivedVersion(v1, "2027", "meaning", 0.4, domain.DerivationDrift, domain.DriftMetrics{}, 1)
	require.NoError(t, err)
	_, err = repo.Derive(context.Background(), v3)
	assert.ErrorIs(t, err, domain.ErrParentSuperseded)
	assert.ErrorIs(t, err, domain.ErrState)
}

func TestDerive_BranchFromSupersededParent(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	v2 := derive(t, repo, v1, "2026", domain.DerivationDrift)

	// A branch derivation tolerates a superseded parent and does not steal
	// the current flag.
	branch := derive(t, repo, v1, "2026-alt", domain.DerivationBranch)
	assert.False(t, branch.IsCurrent)
	assert.Equal(t, 3, branch.VersionNumber)

	current, err := repo.Current(ctx, term.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)
}

func TestSetCurrent_AdministrativeOverride(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	v2 := derive(t, repo, v1, "2026", domain.DerivationDrift)

	require.NoError(t, repo.SetCurrent(ctx, v1.ID))

	got1, err := repo.Get(ctx, v1.ID)
	require.NoError(t, err)
	got2, err := repo.Get(ctx, v2.ID)
	require.NoError(t, err)
	assert.True(t, got1.IsCurrent)
	assert.False(t, got2.IsCurrent)
}

func TestSetCurrent_VersionMissing(t *testing.T) {
	repo, _ := newFixture(t)

	err := repo.SetCurrent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestHistory_OrderedRootFirst(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	v2 := derive(t, repo, v1, "2026", domain.DerivationDrift)
	v3 := derive(t, repo, v2, "2027", domain.DerivationDrift)

	var got []domain.TermVersion
	for v, err := range repo.History(ctx, term.ID) {
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].VersionNumber, got[1].VersionNumber, got[2].VersionNumber})
	assert.Equal(t, v1.ID, got[0].ID)
	assert.Equal(t, v3.ID, got[2].ID)
}

func TestHistory_Restartable(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	derive(t, repo, v1, "2026", domain.DerivationDrift)

	seq := repo.History(ctx, term.ID)

	// First pass stops early; second pass must restart from the root.
	for v, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, 1, v.VersionNumber)
		break
	}
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestDerivationChain_TerminatesWithinVersionCount(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v := makeRoot(t, repo, term, "1990", 0.5)
	total := 1
	for _, period := range []string{"2000", "2010", "2020", "2025"} {
		v = derive(t, repo, v, period, domain.DerivationDrift)
		total++
	}

	// Walk derived_from from the tip; it must reach the root in <= total steps.
	steps := 0
	cur, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	for cur.DerivedFrom != nil {
		steps++
		require.LessOrEqual(t, steps, total, "chain walk exceeded version count")
		cur, err = repo.Get(ctx, *cur.DerivedFrom)
		require.NoError(t, err)
	}
	assert.Equal(t, total-1, steps)
}

func TestUpdateDriftMetrics(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v1 := makeRoot(t, repo, term, "2025", 0.5)
	v2 := derive(t, repo, v1, "2026", domain.DerivationDrift)

	overlap, positional, reduced := domain.Score(0.3), domain.Score(0.6), domain.Score(0.2)
	require.NoError(t, repo.UpdateDriftMetrics(ctx, v2.ID, domain.DriftMetrics{
		NeighborhoodOverlap: &overlap,
		PositionalChange:    &positional,
		SimilarityReduction: &reduced,
	}))

	got, err := repo.Get(ctx, v2.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Metrics.NeighborhoodOverlap)
	assert.Equal(t, overlap, *got.Metrics.NeighborhoodOverlap)
	assert.Equal(t, positional, *got.Metrics.PositionalChange)
	assert.Equal(t, reduced, *got.Metrics.SimilarityReduction)
}

func TestExactlyOneCurrent_AfterMixedOperations(t *testing.T) {
	repo, term := newFixture(t)
	ctx := context.Background()

	v := makeRoot(t, repo, term, "2025", 0.5)
	for _, period := range []string{"2026", "2027", "2028"} {
		v = derive(t, repo, v, period, domain.DerivationDrift)
	}
	require.NoError(t, repo.SetCurrent(ctx, v.ID))

	currentCount := 0
	for got, err := range repo.History(ctx, term.ID) {
		require.NoError(t, err)
		if got.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)
}
