package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
	activityrepo "github.com/diachron-labs/driftd/internal/repository/activity"
	adjustmentrepo "github.com/diachron-labs/driftd/internal/repository/adjustment"
	agentrepo "github.com/diachron-labs/driftd/internal/repository/agent"
	anchorrepo "github.com/diachron-labs/driftd/internal/repository/anchor"
	provrepo "github.com/diachron-labs/driftd/internal/repository/provenance"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
	versionrepo "github.com/diachron-labs/driftd/internal/repository/version"
	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
	anchoruc "github.com/diachron-labs/driftd/internal/usecase/anchor"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
	healthuc "github.com/diachron-labs/driftd/internal/usecase/health"
	provuc "github.com/diachron-labs/driftd/internal/usecase/provenance"
	termuc "github.com/diachron-labs/driftd/internal/usecase/term"
	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "driftd.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	versions := versionrepo.New(database)
	driftSvc, err := driftuc.New(activityrepo.New(database), versions, agentrepo.New(database),
		provrepo.New(database), domain.DefaultMagnitudePolicy())
	require.NoError(t, err)

	server := NewServer(
		termuc.New(termrepo.New(database)),
		versionuc.New(versions, adjustmentrepo.New(database)),
		anchoruc.New(anchorrepo.New(database)),
		agentuc.New(agentrepo.New(database)),
		driftSvc,
		provuc.New(provrepo.New(database)),
		healthuc.New(database),
		time.Hour,
		zap.NewNop(),
	)

	r := chi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	server.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestDriftCycleScenario(t *testing.T) {
	ts := newTestServer(t)

	// Catalogue the term and its first meaning.
	var term termResponse
	status := doJSON(t, ts, http.MethodPost, "/terms", map[string]any{
		"text": "hooligan", "research_domain": "sociolinguistics", "created_by": 1,
	}, &term)
	require.Equal(t, http.StatusCreated, status)

	var v1 versionResponse
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/terms/%s/versions", term.ID), map[string]any{
		"period": "2025", "meaning": "a violent troublemaker", "fuzziness": 0.5, "created_by": 1,
	}, &v1)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, v1.IsCurrent)
	assert.Equal(t, 1, v1.VersionNumber)

	// Build the distributional neighborhood.
	var link anchorLinkResponse
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/versions/%s/anchors", v1.ID), map[string]any{
		"text": "young", "similarity": 0.9, "rank": 1,
	}, &link)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, link.Anchor.Frequency)

	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/versions/%s/anchors", v1.ID), map[string]any{
		"text": "engages", "similarity": 0.85, "rank": 2,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	// Register the detector and start an activity against v1.
	var agent agentResponse
	status = doJSON(t, ts, http.MethodPost, "/agents", map[string]any{
		"type": "software_agent", "name": "drift-detector", "algorithm": "sgns-procrustes", "user_id": 1,
	}, &agent)
	require.Equal(t, http.StatusCreated, status)

	var activity activityResponse
	status = doJSON(t, ts, http.MethodPost, "/activities", map[string]any{
		"used_version": v1.ID, "agent_id": agent.ID,
		"start_period": "2025", "end_period": "2026", "created_by": 1,
	}, &activity)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "running", activity.Status)

	// Derive the drifted meaning; the current flag flips atomically.
	var v2 versionResponse
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/versions/%s/derive", v1.ID), map[string]any{
		"period": "2026", "meaning": "an aggressive sports fan", "fuzziness": 0.4,
		"derivation_type": "drift", "created_by": 1,
	}, &v2)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, v2.IsCurrent)
	assert.Equal(t, 2, v2.VersionNumber)

	var v1After versionResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/versions/%s", v1.ID), nil, &v1After)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, v1After.IsCurrent)

	// An out-of-range magnitude is rejected and the activity stays running.
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/activities/%s/complete", activity.ID), map[string]any{
		"generated_version": v2.ID, "magnitude": 1.5, "drift_type": "shift",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var stillRunning activityResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/activities/%s", activity.ID), nil, &stillRunning)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "running", stillRunning.Status)

	// Complete with a valid magnitude.
	var completed activityResponse
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/activities/%s/complete", activity.ID), map[string]any{
		"generated_version": v2.ID, "magnitude": 0.42, "drift_type": "shift",
		"evidence": "neighborhood turnover between 2025 and 2026",
	}, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", completed.Status)
	assert.True(t, completed.DriftDetected)
	require.NotNil(t, completed.GeneratedVersion)
	assert.Equal(t, v2.ID, *completed.GeneratedVersion)

	// Completion recorded the provenance edge v2 -> v1.
	var lineage []edgeResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/provenance/term_version/%s/lineage", v2.ID), nil, &lineage)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, lineage, 1)
	assert.Equal(t, v1.ID, lineage[0].DerivedFrom)

	// A second completion hits the terminal guard.
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/activities/%s/complete", activity.ID), map[string]any{
		"generated_version": v2.ID, "magnitude": 0.42, "drift_type": "shift",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Manual fuzziness recalibration goes through the audit log.
	var adj adjustmentResponse
	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/versions/%s/fuzziness", v1.ID), map[string]any{
		"score": 0.65, "reason": "manual recalibration", "adjusted_by": 7,
	}, &adj)
	require.Equal(t, http.StatusCreated, status)
	assert.InDelta(t, 0.5, adj.OriginalScore, 1e-9)
	assert.InDelta(t, 0.65, adj.AdjustedScore, 1e-9)

	var history []versionResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/terms/%s/history", term.ID), nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 2)
	assert.InDelta(t, 0.65, history[0].Fuzziness, 1e-9)
	assert.Equal(t, "medium", history[0].Confidence)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	// Missing references map to 404.
	status := doJSON(t, ts, http.MethodGet,
		"/terms/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Malformed ids are rejected before the usecase runs.
	status = doJSON(t, ts, http.MethodGet, "/terms/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown enum values map to 400.
	var term termResponse
	status = doJSON(t, ts, http.MethodPost, "/terms", map[string]any{
		"text": "hooligan", "created_by": 1,
	}, &term)
	require.Equal(t, http.StatusCreated, status)
	status = doJSON(t, ts, http.MethodPatch, fmt.Sprintf("/terms/%s/status", term.ID), map[string]any{
		"status": "deleted", "updated_by": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Duplicate terms map to 409.
	status = doJSON(t, ts, http.MethodPost, "/terms", map[string]any{
		"text": "hooligan", "created_by": 1,
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Root version creation for a missing term maps to 404.
	status = doJSON(t, ts, http.MethodPost,
		"/terms/00000000-0000-0000-0000-000000000001/versions", map[string]any{
			"period": "2025", "meaning": "x", "fuzziness": 0.5, "created_by": 1,
		}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var report healthResponse
	status := doJSON(t, ts, http.MethodGet, "/healthz", nil, &report)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", report.Status)
}
