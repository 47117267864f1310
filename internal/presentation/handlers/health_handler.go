package handlers

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Network string `json:"network"`
	ChainID int64  `json:"chainId"`
	Routers int    `json:"routers"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	version string
	network string
	chainID int64
	routers int
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, network string, chainID int64, routers int) *HealthHandler {
	return &HealthHandler{
		version: version,
		network: network,
		chainID: chainID,
		routers: routers,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Network: h.network,
		ChainID: h.chainID,
		Routers: h.routers,
	})
}
