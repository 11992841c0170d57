package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

// BookingsHandler exposes the booking engine.
type BookingsHandler struct {
	svc    *service.BookingService
	logger *zap.Logger
}

// NewBookingsHandler builds handler set.
func NewBookingsHandler(svc *service.BookingService, logger *zap.Logger) *BookingsHandler {
	return &BookingsHandler{svc: svc, logger: logger}
}

// List handles GET /api/bookings.
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ListDetails handles GET /api/bookings/details.
func (h *BookingsHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.ListDetails(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Get handles GET /api/bookings/{id}.
func (h *BookingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// GetDetails handles GET /api/bookings/{id}/details.
func (h *BookingsHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.GetDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// ListByNIC handles GET /api/bookings/owner/{nic}.
func (h *BookingsHandler) ListByNIC(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListByNIC(r.Context(), r.PathValue("nic"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Create handles POST /api/bookings.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	booking, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// Update handles PUT /api/bookings/{id}.
func (h *BookingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.Update(r.Context(), r.PathValue("id"), input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Cancel handles PATCH /api/bookings/{id}/cancel.
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Approve handles PATCH /api/bookings/{id}/approve.
func (h *BookingsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Approve(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Complete handles PATCH /api/bookings/{id}/complete.
func (h *BookingsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Complete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
