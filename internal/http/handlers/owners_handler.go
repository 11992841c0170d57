package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

// OwnersHandler exposes the EV owner registry.
type OwnersHandler struct {
	svc    *service.OwnerService
	logger *zap.Logger
}

// NewOwnersHandler builds handler set.
func NewOwnersHandler(svc *service.OwnerService, logger *zap.Logger) *OwnersHandler {
	return &OwnersHandler{svc: svc, logger: logger}
}

// List handles GET /api/owners.
func (h *OwnersHandler) List(w http.ResponseWriter, r *http.Request) {
	owners, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, owners)
}

// Get handles GET /api/owners/{nic}.
func (h *OwnersHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.GetByNIC(r.Context(), r.PathValue("nic"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, owner)
}

// Create handles POST /api/owners.
func (h *OwnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.OwnerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	owner, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, owner)
}

// Update handles PUT /api/owners/{nic}.
func (h *OwnersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.OwnerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.Update(r.Context(), r.PathValue("nic"), input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /api/owners/{nic}.
func (h *OwnersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("nic")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Activate handles POST /api/owners/{nic}/activate.
func (h *OwnersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetActive(r.Context(), r.PathValue("nic"), true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Deactivate handles POST /api/owners/{nic}/deactivate.
func (h *OwnersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetActive(r.Context(), r.PathValue("nic"), false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
