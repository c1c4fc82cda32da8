package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// ClientListHandler lists the PCs an agent can identify as.
func (h *ConsoleHandler) ClientListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	pcs, err := h.Clients.ListPCs(ctx)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"pcs":   pcs,
		"count": len(pcs),
	})
}

// ClientDesktopHandler checks a PC in and returns its desktop state.
func (h *ConsoleHandler) ClientDesktopHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	pcID, err := parsePathID(mux.Vars(r)["id"])
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	desktop, err := h.Clients.CheckIn(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, desktop)
}

// ClientInstallHandler records a simulated software install.
func (h *ConsoleHandler) ClientInstallHandler(w http.ResponseWriter, r *http.Request) {
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
	name := fields.String("software_name")

	if err := h.Clients.InstallSoftware(ctx, pcID, name); err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, fmt.Sprintf("[%s] installed", name), map[string]interface{}{
		"pc_id":         pcID,
		"software_name": name,
	})
}

// ClientShutdownHandler processes a PC-initiated shutdown.
func (h *ConsoleHandler) ClientShutdownHandler(w http.ResponseWriter, r *http.Request) {
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

	msg, err := h.Clients.Shutdown(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "System shutdown: "+msg, map[string]interface{}{
		"pc_id":  pcID,
		"result": msg,
	})
}
