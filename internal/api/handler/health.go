package handler

import (
	"context"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/api/middleware"
	"github.com/gatehouse/gatehouse/internal/api/response"
)

// DBPinger verifies database connectivity for health checks.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	dbPinger DBPinger
	version  string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dbPinger DBPinger, version string) *HealthHandler {
	return &HealthHandler{
		dbPinger: dbPinger,
		version:  version,
	}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"
	connected := true

	if h.dbPinger == nil || h.dbPinger.Ping(r.Context()) != nil {
		status = "degraded"
		connected = false
	}

	data := healthData{
		Status:  status,
		Version: h.version,
		Database: databaseStatus{
			Connected: connected,
		},
	}

	response.Success(w, http.StatusOK, data, requestID)
}
