package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"netclass-console/internal/model"
)

// DashboardHandler lists every PC with the available locations.
func (h *ConsoleHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	dashboard, err := h.PCs.Dashboard(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, dashboard)
}

// RegisterFormHandler returns the locations a new PC can be placed in.
func (h *ConsoleHandler) RegisterFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	locations, err := h.PCs.Locations(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
	})
}

// RegisterPCHandler registers a new PC through the registration procedure.
func (h *ConsoleHandler) RegisterPCHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	fields, err := ReadFields(w, r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	locationID, err := fields.Int("location_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	reg := model.PCRegistration{
		Name:       fields.String("pc_name"),
		LocationID: locationID,
		IPAddress:  fields.String("ip_address"),
	}
	if err := h.PCs.RegisterPC(ctx, reg); err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "PC registered successfully", reg)
}

// ChangeModeHandler switches the management mode of a PC.
func (h *ConsoleHandler) ChangeModeHandler(w http.ResponseWriter, r *http.Request) {
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

	pcID, err := fields.Int("pc_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	mode := fields.String("new_mode", "mode")
	if err := h.PCs.ChangeMode(ctx, pcID, mode, admin.AdminID); err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, fmt.Sprintf("Mode changed to %s", mode), map[string]interface{}{
		"pc_id": pcID,
		"mode":  mode,
	})
}

// PCDetailHandler returns a PC with its snapshots and installed software.
func (h *ConsoleHandler) PCDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	pcID, err := parsePathID(mux.Vars(r)["id"])
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	detail, err := h.PCs.Detail(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, detail)
}

// CreateSnapshotHandler stores a recovery point in a slot.
func (h *ConsoleHandler) CreateSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	fields, err := ReadFields(w, r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	pcID, err := fields.Int("pc_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}
	slot, err := fields.Int("slot_number")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	if err := h.PCs.CreateSnapshot(ctx, pcID, slot, fields.String("description")); err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, fmt.Sprintf("Snapshot saved to slot %d", slot), map[string]interface{}{
		"pc_id":       pcID,
		"slot_number": slot,
	})
}

// SetActiveSnapshotHandler selects the snapshot a PC restores to.
func (h *ConsoleHandler) SetActiveSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	fields, err := ReadFields(w, r)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	pcID, err := fields.Int("pc_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}
	snapshotID, err := fields.Int("snapshot_id")
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	if err := h.PCs.SetActiveSnapshot(ctx, pcID, snapshotID); err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Active snapshot updated", map[string]interface{}{
		"pc_id":       pcID,
		"snapshot_id": snapshotID,
	})
}

// EventLogHandler returns the latest audit entries.
func (h *ConsoleHandler) EventLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	events, err := h.PCs.RecentEvents(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
