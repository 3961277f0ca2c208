package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// testRouter mounts a skeleton of the driftd API so the middleware sees the
// same chi route patterns the real server registers.
func testRouter() chi.Router {
	ok := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}
	}

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Route("/terms", func(r chi.Router) {
		r.Post("/", ok(http.StatusCreated))
		r.Get("/", ok(http.StatusOK))
		r.Get("/{id}", ok(http.StatusOK))
		r.Get("/{id}/history", ok(http.StatusOK))
	})
	r.Route("/versions", func(r chi.Router) {
		r.Post("/{id}/anchors", ok(http.StatusCreated))
		r.Post("/{id}/derive", ok(http.StatusConflict))
	})
	r.Post("/activities/{id}/complete", ok(http.StatusOK))
	r.Get("/healthz", ok(http.StatusOK))
	return r
}

func do(t *testing.T, r chi.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, http.NoBody))
	return rr
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := testRouter()

	// Two different term ids land on one {id} pattern label.
	do(t, r, "GET", "/terms/2f0c7d86-9f4e-4a6c-9f21-0d9a3d9b6f01")
	do(t, r, "GET", "/terms/8a1be0a4-1d34-44a5-8e37-6f6e2b1b2c55")

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/terms/{id}", "200"))
	if val < 2 {
		t.Errorf("expected both lookups on the /terms/{id} label, got %f", val)
	}
	raw := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"GET", "/terms/2f0c7d86-9f4e-4a6c-9f21-0d9a3d9b6f01", "200"))
	if raw != 0 {
		t.Errorf("raw URLs must not become label values, got %f", raw)
	}
}

func TestMiddleware_CountsPerRouteMethodStatus(t *testing.T) {
	r := testRouter()

	tests := []struct {
		method, target, pattern, status string
	}{
		{"POST", "/terms", "/terms", "201"},
		{"GET", "/terms", "/terms", "200"},
		{"POST", "/versions/9d2f3b70-56a1-4a0f-bb1e-1a2b3c4d5e6f/anchors", "/versions/{id}/anchors", "201"},
		{"POST", "/versions/9d2f3b70-56a1-4a0f-bb1e-1a2b3c4d5e6f/derive", "/versions/{id}/derive", "409"},
		{"POST", "/activities/9d2f3b70-56a1-4a0f-bb1e-1a2b3c4d5e6f/complete", "/activities/{id}/complete", "200"},
		{"GET", "/healthz", "/healthz", "200"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.pattern, func(t *testing.T) {
			do(t, r, tc.method, tc.target)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total{%s,%s,%s} >= 1, got %f", tc.method, tc.pattern, tc.status, val)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_UnmatchedRouteStillObserved(t *testing.T) {
	r := testRouter()

	rr := do(t, r, "GET", "/no/such/route")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	// No route pattern exists for unmatched requests; they fold into the
	// "unknown" label instead of minting one series per bad URL.
	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	if val < 1 {
		t.Errorf("expected the 404 recorded under the unknown label, got %f", val)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/terms/{id}/history", "/terms/{id}/history"},
		{"/healthz", "/healthz"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestExposition_ViaPromhttp(t *testing.T) {
	r := testRouter()
	do(t, r, "GET", "/healthz")

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "driftd_http_requests_total") {
		t.Error("expected the driftd-namespaced request counter in the exposition")
	}
}
