package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/http/middleware"
	"evcharge/internal/models"
	"evcharge/internal/service"
)

// StationsHandler exposes station directory and slot registry
// operations.
type StationsHandler struct {
	svc    *service.StationService
	logger *zap.Logger
}

// NewStationsHandler builds handler set.
func NewStationsHandler(svc *service.StationService, logger *zap.Logger) *StationsHandler {
	return &StationsHandler{svc: svc, logger: logger}
}

func actor(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

// List handles GET /api/stations.
func (h *StationsHandler) List(w http.ResponseWriter, r *http.Request) {
	var isActive *bool
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_active")
			return
		}
		isActive = &parsed
	}
	stations, err := h.svc.List(r.Context(), r.URL.Query().Get("type"), isActive)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Get handles GET /api/stations/{id}.
func (h *StationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	station, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// Create handles POST /api/stations.
func (h *StationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateStationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	station, err := h.svc.Create(r.Context(), input, actor(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

// Update handles PUT /api/stations/{id}.
func (h *StationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateStationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.UpdateDetails(r.Context(), r.PathValue("id"), input, actor(r)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// UpdateSchedule handles PUT /api/stations/{id}/schedule.
func (h *StationsHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var windows []models.ScheduleWindow
	if err := json.NewDecoder(r.Body).Decode(&windows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.UpdateSchedule(r.Context(), r.PathValue("id"), windows, actor(r)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Activate handles POST /api/stations/{id}/activate.
func (h *StationsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Deactivate handles POST /api/stations/{id}/deactivate.
func (h *StationsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /api/stations/{id}.
func (h *StationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Nearby handles GET /api/stations/nearby.
func (h *StationsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	radiusKm := 5.0
	if raw := q.Get("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid radius_km")
			return
		}
		radiusKm = parsed
	}

	query := service.NearbyQuery{Lat: lat, Lng: lng, RadiusKm: radiusKm, Type: q.Get("type")}
	if raw := q.Get("available_at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid available_at, use RFC3339")
			return
		}
		query.AvailableAt = &at
	}

	stations, err := h.svc.FindNearby(r.Context(), query)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// ListSlots handles GET /api/stations/{id}/slots.
func (h *StationsHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.svc.ListSlots(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// AddSlot handles POST /api/stations/{id}/slots.
func (h *StationsHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	var input service.SlotInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	slot, err := h.svc.AddSlot(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// UpdateSlot handles PUT /api/stations/{id}/slots/{slotId}.
func (h *StationsHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var input service.SlotInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.UpdateSlot(r.Context(), r.PathValue("id"), r.PathValue("slotId"), input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DeactivateSlot handles POST /api/stations/{id}/slots/{slotId}/deactivate.
func (h *StationsHandler) DeactivateSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateSlot(r.Context(), r.PathValue("id"), r.PathValue("slotId")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DeleteSlot handles DELETE /api/stations/{id}/slots/{slotId}.
func (h *StationsHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSlot(r.Context(), r.PathValue("id"), r.PathValue("slotId")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
