package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/site-size-cache/internal/domain"
	"github.com/vertextoedge/site-size-cache/internal/service/sizer"
)

// listingView is the view query value of high-churn listing pages
const listingView = "media"

// sizeResponse is the JSON body of a size query
type sizeResponse struct {
	SiteID   int64  `json:"site_id"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
	Readable string `json:"readable"`
}

// errorResponse is the JSON body of a failed request
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SizeHandler handles size and usage queries
type SizeHandler struct {
	sizes  SizeService
	logger *zap.Logger
}

// NewSizeHandler creates a new SizeHandler
func NewSizeHandler(sizes SizeService, logger *zap.Logger) *SizeHandler {
	return &SizeHandler{
		sizes:  sizes,
		logger: logger,
	}
}

// HandleSize returns the size of a site.
// Query: force=true recomputes, view=media applies the listing view memory TTL.
func (h *SizeHandler) HandleSize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.URL.Query().Get("view") == listingView {
		ctx = sizer.WithListingView(ctx)
	}

	id, err := h.sizes.ResolveTenant(ctx, r.PathValue("site"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	size, err := h.sizes.GetSize(ctx, id, parseForce(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sizeResponse{
		SiteID:   int64(id),
		Size:     size.Encode(),
		Status:   size.Kind().String(),
		Readable: size.String(),
	})
}

// HandleUsage returns the usage report of a site
func (h *SizeHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.URL.Query().Get("view") == listingView {
		ctx = sizer.WithListingView(ctx)
	}

	id, err := h.sizes.ResolveTenant(ctx, r.PathValue("site"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	report, err := h.sizes.Report(ctx, id, parseForce(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *SizeHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case sizer.IsRecomputeInProgress(err):
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("size query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseForce(r *http.Request) bool {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return force
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
