package handlers

import (
	"net/http"

	"github.com/lotfolio/lotfolio/internal/api/response"
	"github.com/lotfolio/lotfolio/internal/service"
)

// SystemHandler handles HTTP requests for system endpoints.
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler with the provided service dependency.
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health handles GET requests to check system health.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with {"status": "healthy"}
// Error: 503 Service Unavailable if the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Version handles GET requests to retrieve the application version.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with {"version": "..."}
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string]string{
		"version": h.systemService.CheckVersion(),
	})
}
