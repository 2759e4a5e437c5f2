package httpapi

import (
	"net/http"
)

// RunSweep triggers one reminder sweep. Cron and QStash both call it.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "RunSweep")
	defer span.End()

	result, err := h.sweeps.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "notification sweep failed", "run_id", result.RunID, "error", err)
		writeFailure(ctx, w, "Failed to process notifications", err, result.PartialErrors)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}
