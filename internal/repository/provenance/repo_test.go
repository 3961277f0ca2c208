package provenance

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "driftd.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return New(database)
}

func makeEdge(t *testing.T, entity, from uuid.UUID) domain.ProvenanceEdge {
	t.Helper()
	e, err := domain.NewProvenanceEdge(entity, domain.EntityTermVersion, from, nil, nil)
	require.NoError(t, err)
	return e
}

func TestRecordAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	v1, v2 := uuid.New(), uuid.New()
	activity := uuid.New()
	e, err := domain.NewProvenanceEdge(v2, domain.EntityTermVersion, v1, &activity,
		map[string]string{"algorithm": "sgns-procrustes"})
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, e))

	got, err := repo.Get(ctx, domain.EntityTermVersion, v2)
	require.NoError(t, err)
	assert.Equal(t, v1, got.DerivedFrom)
	require.NotNil(t, got.ActivityID)
	assert.Equal(t, activity, *got.ActivityID)
	assert.Equal(t, "sgns-procrustes", got.Metadata["algorithm"])
}

func TestRecord_DuplicateRejected(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	v1, v2 := uuid.New(), uuid.New()
	require.NoError(t, repo.Record(ctx, makeEdge(t, v2, v1)))

	err := repo.Record(ctx, makeEdge(t, v2, v1))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRecord_SelfDerivationRejected(t *testing.T) {
	v := uuid.New()
	_, err := domain.NewProvenanceEdge(v, domain.EntityTermVersion, v, nil, nil)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestRecord_CycleRejectedAtWriteTime(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.Record(ctx, makeEdge(t, b, a)))
	require.NoError(t, repo.Record(ctx, makeEdge(t, c, b)))

	// a <- b <- c already holds; a "derived from c" would close the loop.
	err := repo.Record(ctx, makeEdge(t, a, c))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.ErrorIs(t, err, domain.ErrConsistency)
}

func TestLineage_WalksToRoot(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.Record(ctx, makeEdge(t, b, a)))
	require.NoError(t, repo.Record(ctx, makeEdge(t, c, b)))

	var hops []uuid.UUID
	for edge, err := range repo.Lineage(ctx, domain.EntityTermVersion, c) {
		require.NoError(t, err)
		hops = append(hops, edge.DerivedFrom)
	}
	assert.Equal(t, []uuid.UUID{b, a}, hops)
}

func TestLineage_Restartable(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, repo.Record(ctx, makeEdge(t, b, a)))
	require.NoError(t, repo.Record(ctx, makeEdge(t, c, b)))

	seq := repo.Lineage(ctx, domain.EntityTermVersion, c)
	for edge, err := range seq {
		require.NoError(t, err)
		assert.Equal(t, b, edge.DerivedFrom)
		break
	}
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestLineage_RootIsEmpty(t *testing.T) {
	repo := newRepo(t)

	for range repo.Lineage(context.Background(), domain.EntityTermVersion, uuid.New()) {
		t.Fatal("root entity must yield no edges")
	}
}

func TestRecord_SeparateEntityTypeNamespaces(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	require.NoError(t, repo.Record(ctx, makeEdge(t, b, a)))

	// The same ids under a different entity type are a different namespace.
	e, err := domain.NewProvenanceEdge(b, domain.EntityOntology, a, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, e))
}
