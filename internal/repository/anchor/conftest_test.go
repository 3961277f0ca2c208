package anchor

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
	versionrepo "github.com/diachron-labs/driftd/internal/repository/version"
)

type fixture struct {
	repo     *Repo
	database *db.DB
	version  domain.TermVersion
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "driftd.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	f := &fixture{repo: New(database), database: database}
	f.version = f.makeVersion(t, "hooligan")
	return f
}

// makeVersion seeds a term with a current root version.
func (f *fixture) makeVersion(t *testing.T, termText string) domain.TermVersion {
	t.Helper()
	ctx := context.Background()
	f.seq++

	term, err := domain.NewTerm(fmt.Sprintf("%s-%d", termText, f.seq), "sociolinguistics", "", 1)
	require.NoError(t, err)
	require.NoError(t, termrepo.New(f.database).Create(ctx, term))

	v, err := domain.NewRootVersion(term.ID, "2025", "a violent troublemaker", 0.5, 1)
	require.NoError(t, err)
	require.NoError(t, versionrepo.New(f.database).CreateRoot(ctx, v))
	return v
}

// deriveVersion derives a child of parent with the given derivation type.
func (f *fixture) deriveVersion(t *testing.T, parent domain.TermVersion, derivation domain.DerivationType) domain.TermVersion {
	t.Helper()
	v, err := domain.NewDerivedVersion(parent, "2026", "an aggressive sports fan", 0.4,
		derivation, domain.DriftMetrics{}, 1)
	require.NoError(t, err)
	v, err = versionrepo.New(f.database).Derive(context.Background(), v)
	require.NoError(t, err)
	return v
}

func scoreOf(t *testing.T, v float64) *domain.Score {
	t.Helper()
	s, err := domain.ScorePtr(v)
	require.NoError(t, err)
	return s
}

func rankOf(n int) *int { return &n }
