package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
	anchoruc "github.com/diachron-labs/driftd/internal/usecase/anchor"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
	healthuc "github.com/diachron-labs/driftd/internal/usecase/health"
	provuc "github.com/diachron-labs/driftd/internal/usecase/provenance"
	termuc "github.com/diachron-labs/driftd/internal/usecase/term"
	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
)

// Server holds the use case services behind the REST API.
type Server struct {
	terms      *termuc.Service
	versions   *versionuc.Service
	anchors    *anchoruc.Service
	agents     *agentuc.Service
	drift      *driftuc.Service
	provenance *provuc.Service
	health     *healthuc.Service
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewServer creates the API server.
func NewServer(
	terms *termuc.Service,
	versions *versionuc.Service,
	anchors *anchoruc.Service,
	agents *agentuc.Service,
	drift *driftuc.Service,
	provenance *provuc.Service,
	health *healthuc.Service,
	staleAfter time.Duration,
	logger *zap.Logger,
) *Server {
	return &Server{
		terms:      terms,
		versions:   versions,
		anchors:    anchors,
		agents:     agents,
		drift:      drift,
		provenance: provenance,
		health:     health,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/terms", func(r chi.Router) {
		r.Post("/", s.handleCreateTerm)
		r.Get("/", s.handleListTerms)
		r.Get("/{id}", s.handleGetTerm)
		r.Patch("/{id}/status", s.handleUpdateTermStatus)
		r.Post("/{id}/versions", s.handleCreateRootVersion)
		r.Get("/{id}/history", s.handleHistory)
		r.Get("/{id}/current", s.handleCurrentVersion)
	})

	r.Route("/versions", func(r chi.Router) {
		r.Get("/{id}", s.handleGetVersion)
		r.Post("/{id}/derive", s.handleDeriveVersion)
		r.Post("/{id}/current", s.handleSetCurrent)
		r.Post("/{id}/anchors", s.handleAttachAnchor)
		r.Get("/{id}/anchors", s.handleNeighborhood)
		r.Delete("/{id}/anchors/{anchorID}", s.handleDetachAnchor)
		r.Post("/{id}/fuzziness", s.handleAdjustFuzziness)
		r.Get("/{id}/adjustments", s.handleListAdjustments)
	})

	r.Get("/anchors", s.handleVocabulary)

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", s.handleRegisterAgent)
		r.Get("/", s.handleListAgents)
		r.Get("/{id}", s.handleGetAgent)
		r.Patch("/{id}/active", s.handleSetAgentActive)
	})

	r.Route("/activities", func(r chi.Router) {
		r.Post("/", s.handleStartActivity)
		r.Get("/stale", s.handleStaleActivities)
		r.Get("/{id}", s.handleGetActivity)
		r.Post("/{id}/complete", s.handleCompleteActivity)
		r.Post("/{id}/fail", s.handleFailActivity)
		r.Post("/{id}/provisional", s.handleMarkProvisional)
	})

	r.Route("/provenance", func(r chi.Router) {
		r.Post("/", s.handleRecordDerivation)
		r.Get("/{entityType}/{entityID}", s.handleGetDerivation)
		r.Get("/{entityType}/{entityID}/lineage", s.handleLineage)
	})

	r.Get("/healthz", s.handleHealth)
}
