package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services"
)

// ResultsHandler serves stored run results and analytics views.
type ResultsHandler struct {
	results services.ResultsService
	logger  *zap.Logger
}

// NewResultsHandler creates a results handler.
func NewResultsHandler(results services.ResultsService, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{results: results, logger: logger}
}

// RegisterRoutes registers the results handler's routes on the given mux.
func (h *ResultsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /results/{run_id}", h.GetResults)
	mux.HandleFunc("GET /analytics/{view_name}", h.GetAnalyticsView)
}

// GetResults handles GET /results/{run_id}.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")

	result, err := h.results.GetResult(r.Context(), runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "Run ID not found")
			return
		}
		h.logger.Error("Failed to load run result",
			zap.String("run_id", runID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load run result")
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode run result", zap.Error(err))
	}
}

// GetAnalyticsView handles GET /analytics/{view_name}. Only allow-listed
// view names are served; anything else is a client error.
func (h *ResultsHandler) GetAnalyticsView(w http.ResponseWriter, r *http.Request) {
	viewName := r.PathValue("view_name")

	rows, err := h.results.AnalyticsView(r.Context(), viewName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_view", "Invalid analytical view name.")
			return
		}
		h.logger.Error("Failed to load analytics view",
			zap.String("view", viewName),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load analytics view")
		return
	}

	if rows == nil {
		rows = []map[string]any{}
	}
	if err := WriteJSON(w, http.StatusOK, rows); err != nil {
		h.logger.Error("Failed to encode analytics view", zap.Error(err))
	}
}
