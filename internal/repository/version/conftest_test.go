package version

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
)

func newFixture(t *testing.T) (*Repo, domain.Term) {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "driftd.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	term, err := domain.NewTerm("hooligan", "sociolinguistics", "", 1)
	require.NoError(t, err)
	require.NoError(t, termrepo.New(database).Create(context.Background(), term))

	return New(database), term
}

func makeRoot(t *testing.T, repo *Repo, term domain.Term, period string, fuzziness float64) domain.TermVersion {
	t.Helper()
	score, err := domain.NewScore(fuzziness)
	require.NoError(t, err)
	v, err := domain.NewRootVersion(term.ID, period, "a violent troublemaker", score, 1)
	require.NoError(t, err)
	require.NoError(t, repo.CreateRoot(context.Background(), v))
	return v
}

func derive(t *testing.T, repo *Repo, parent domain.TermVersion, period string, derivation domain.DerivationType) domain.TermVersion {
	t.Helper()
	v, err := domain.NewDerivedVersion(parent, period, "an aggressive sports fan", 0.4, derivation, domain.DriftMetrics{}, 1)
	require.NoError(t, err)
	created, err := repo.Derive(context.Background(), v)
	require.NoError(t, err)
	return created
}
