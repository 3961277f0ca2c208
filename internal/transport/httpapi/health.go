package httpapi

import (
	"net/http"

	healthuc "github.com/diachron-labs/driftd/internal/usecase/health"
)

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, healthResponse{Status: string(report.Status), Checks: report.Checks})
}
