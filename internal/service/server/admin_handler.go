package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
)

// AdminHandler handles administrative refresh requests
type AdminHandler struct {
	sizes   SizeService
	limiter RefreshLimiter
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. A nil limiter disables throttling.
func NewAdminHandler(sizes SizeService, limiter RefreshLimiter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		sizes:   sizes,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleRefresh forces a recomputation of the site named by the "site"
// form value (id, domain or child slug; the primary site when empty) and
// responds with the fresh size as a plain integer.
func (h *AdminHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := h.sizes.ResolveTenant(r.Context(), r.FormValue("site"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to resolve site", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if h.limiter != nil {
		if ok, wait := h.limiter.Allow(id); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "refresh rate limited"})
			return
		}
	}

	h.logger.Info("forced size refresh", zap.Int64("site_id", int64(id)))

	size, err := h.sizes.Refresh(r.Context(), id)
	if err != nil {
		h.logger.Error("forced refresh failed", zap.Int64("site_id", int64(id)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "refresh failed"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strconv.FormatInt(size.Encode(), 10)))
}

func retryAfterSeconds(wait time.Duration) int {
	return int(math.Ceil(wait.Seconds()))
}
