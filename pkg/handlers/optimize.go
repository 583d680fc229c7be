package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services/workqueue"
)

// TaskEnqueuer is the queue surface the trigger endpoint needs.
type TaskEnqueuer interface {
	Enqueue(task workqueue.Task) error
}

// OptimizeHandler triggers optimization runs.
type OptimizeHandler struct {
	queue   TaskEnqueuer
	planner *services.Planner
	logger  *zap.Logger
}

// NewOptimizeHandler creates an optimize handler.
func NewOptimizeHandler(queue TaskEnqueuer, planner *services.Planner, logger *zap.Logger) *OptimizeHandler {
	return &OptimizeHandler{queue: queue, planner: planner, logger: logger}
}

// RegisterRoutes registers the optimize handler's routes on the given mux.
func (h *OptimizeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /optimize", h.Trigger)
}

type triggerRequest struct {
	RunID string `json:"run_id"`
}

type triggerResponse struct {
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

// Trigger handles POST /optimize. The run identifier may be supplied by
// the caller; otherwise one is generated. Triggering is fire-and-forget:
// the response only acknowledges that the run was enqueued, and the
// outcome is communicated solely through the stored run status.
func (h *OptimizeHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if r.Body != nil {
		// An empty or absent body is fine; only malformed JSON is rejected.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
			return
		}
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	if err := h.queue.Enqueue(services.NewRunTask(runID, h.planner)); err != nil {
		h.logger.Error("Failed to enqueue optimization run",
			zap.String("run_id", runID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusConflict, "enqueue_failed", err.Error())
		return
	}

	h.logger.Info("Optimization run enqueued", zap.String("run_id", runID))

	response := triggerResponse{
		Message: "Optimization run started",
		RunID:   runID,
	}
	if err := WriteJSON(w, http.StatusAccepted, response); err != nil {
		h.logger.Error("Failed to encode trigger response", zap.Error(err))
	}
}
