package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"netclass-console/internal/analytics"
	"netclass-console/internal/model"
)

// ExportFilename is the attachment name of the analytics workbook
const ExportFilename = "netclass-analytics.xlsx"

// RemoteCommandHandler runs an admin command against a PC.
func (h *ConsoleHandler) RemoteCommandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	admin, err := h.admin(r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	fields, err := ReadFields(w, r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	pcID, err := fields.Int("target_pc_id", "pc_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}
	commandType := fields.String("command_type")

	result, err := h.Commands.RemoteCommand(ctx, admin.AdminID, pcID, commandType, fields.String("message"))
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	var message string
	switch commandType {
	case model.CommandLogoff:
		message = "Remote shutdown complete: " + result.Message
	case model.CommandRestart:
		message = "Restart command sent: " + result.Message
	default:
		message = "Command sent: " + result.Message
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, message, map[string]interface{}{
		"pc_id":        pcID,
		"command_type": commandType,
		"result":       result.Message,
		"dispatched":   result.Dispatched,
	})
}

// HealthCheckHandler scores every PC.
func (h *ConsoleHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	msg, err := h.Maintenance.HealthCheck(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Health check complete: "+msg, nil)
}

// RunMaintenanceHandler restores Restore-mode PCs and marks all PCs offline.
func (h *ConsoleHandler) RunMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	msg, err := h.Maintenance.RunMaintenance(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Maintenance complete: "+msg, nil)
}

// AnalyticsHandler returns the rankings, the location rollup and the
// per-PC software counts.
func (h *ConsoleHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	report, err := h.Analytics.Report(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, report)
}

// AnalyticsExportHandler streams the analytics report as a workbook.
func (h *ConsoleHandler) AnalyticsExportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	data, err := h.Analytics.Export(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", analytics.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Warn("Failed to write analytics export", zap.Error(err))
	}
}
