package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps business-rule codes to HTTP statuses; anything
// non-business is an infrastructure failure and surfaces as a 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	be, ok := service.AsBusiness(err)
	if !ok {
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusBadRequest
	switch be.Code {
	case service.CodeNotFound:
		status = http.StatusNotFound
	case service.CodeSlotUnavailable,
		service.CodeDuplicateSlotCode,
		service.CodeDuplicateUsername,
		service.CodeDuplicateNIC,
		service.CodeDuplicateEmail,
		service.CodeHasActiveBookings,
		service.CodeAlreadyActive,
		service.CodeInvalidTransition:
		status = http.StatusConflict
	case service.CodeInvalidCredentials, service.CodeOwnerInactive:
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": be.Message, "code": be.Code})
}
