package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler reports liveness and store availability.
func (h *ConsoleHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, HealthTimeout)
	defer cancel()

	var storeErr error
	if h.Store != nil {
		storeErr = h.Store.Ping(ctx)
	}

	status := http.StatusOK
	if storeErr != nil {
		h.Logger.Warn("Store health check failed", zap.Error(storeErr))
		status = http.StatusServiceUnavailable
	}

	h.ErrorHandler.SendJSONResponse(w, status, h.ResponseHelper.CreateHealthCheckData(storeErr))
}
