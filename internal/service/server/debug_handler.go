package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/port"
)

// DebugHandler handles debug endpoint requests
type DebugHandler struct {
	stats  port.StatsRepository
	disk   port.DiskReporter
	logger *zap.Logger
}

type statsResponse struct {
	*domain.SizeStats
	UploadsVolume *port.DiskUsage `json:"uploads_volume,omitempty"`
}

// NewDebugHandler creates a new DebugHandler
func NewDebugHandler(stats port.StatsRepository, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{
		stats:  stats,
		logger: logger,
	}
}

// HandleStats handles size cache statistics requests
func (h *DebugHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.stats.GetSizeStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get size stats", zap.Error(err))
		http.Error(w, "Failed to get size stats", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{SizeStats: stats}
	if h.disk != nil {
		usage, err := h.disk.DiskUsage()
		if err != nil {
			h.logger.Warn("failed to get uploads volume usage", zap.Error(err))
		} else {
			resp.UploadsVolume = usage
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
