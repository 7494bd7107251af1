package api

import (
	"net/http"
	"time"

	"github.com/zhmu-100/RationService/internal/api/respond"
)

// HealthHandler reports the aggregated dependency state.
type HealthHandler struct {
	isHealthy func() bool
	unhealthy func() []string
}

// NewHealthHandler takes the aggregate probe and, optionally, a function
// naming the failing dependencies.
func NewHealthHandler(isHealthy func() bool, unhealthy func() []string) *HealthHandler {
	if unhealthy == nil {
		unhealthy = func() []string { return nil }
	}
	return &HealthHandler{isHealthy: isHealthy, unhealthy: unhealthy}
}

// CheckHealth handles GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK
	if !h.isHealthy() {
		code = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		if deps := h.unhealthy(); len(deps) > 0 {
			body["unhealthy"] = deps
		}
	}
	respond.WriteJSON(w, code, body)
}
