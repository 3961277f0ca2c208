package activity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
	agentrepo "github.com/diachron-labs/driftd/internal/repository/agent"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
	versionrepo "github.com/diachron-labs/driftd/internal/repository/version"
)

type fixture struct {
	repo     *Repo
	versions *versionrepo.Repo
	v1       domain.TermVersion
	v2       domain.TermVersion
	agent    domain.AnalysisAgent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "driftd.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	term, err := domain.NewTerm("hooligan", "sociolinguistics", "", 1)
	require.NoError(t, err)
	require.NoError(t, termrepo.New(database).Create(ctx, term))

	versions := versionrepo.New(database)
	v1, err := domain.NewRootVersion(term.ID, "2025", "a violent troublemaker", 0.5, 1)
	require.NoError(t, err)
	require.NoError(t, versions.CreateRoot(ctx, v1))

	draft, err := domain.NewDerivedVersion(v1, "2026", "an aggressive sports fan", 0.4,
		domain.DerivationDrift, domain.DriftMetrics{}, 1)
	require.NoError(t, err)
	v2, err := versions.Derive(ctx, draft)
	require.NoError(t, err)

	agent, err := domain.NewAgent(domain.AgentSoftware, "drift-detector", "", "sgns-procrustes", nil, 1)
	require.NoError(t, err)
	require.NoError(t, agentrepo.New(database).Create(ctx, agent))

	return &fixture{repo: New(database), versions: versions, v1: v1, v2: v2, agent: agent}
}

func (f *fixture) startActivity(t *testing.T) domain.DriftActivity {
	t.Helper()
	a, err := domain.NewActivity(f.v1.ID, f.agent.ID, "2025", "2026", "sgns-procrustes",
		nil, []int{2025, 2026}, 1)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), a))
	return a
}
