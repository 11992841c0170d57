package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{service.CodeNotFound, http.StatusNotFound},
		{service.CodeSlotUnavailable, http.StatusConflict},
		{service.CodeInvalidTransition, http.StatusConflict},
		{service.CodeHasActiveBookings, http.StatusConflict},
		{service.CodeDuplicateSlotCode, http.StatusConflict},
		{service.CodeAlreadyActive, http.StatusConflict},
		{service.CodeInvalidCredentials, http.StatusUnauthorized},
		{service.CodeOwnerInactive, http.StatusUnauthorized},
		{service.CodeTooLateToModify, http.StatusBadRequest},
		{service.CodeOutOfWindow, http.StatusBadRequest},
		{service.CodeOverlappingWindow, http.StatusBadRequest},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, zap.NewNop(), service.NewError(tc.code, "boom"))
		if rec.Code != tc.want {
			t.Fatalf("code %q: status = %d, want %d", tc.code, rec.Code, tc.want)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("code %q: decode body: %v", tc.code, err)
		}
		if body["code"] != tc.code {
			t.Fatalf("body code = %q, want %q", body["code"], tc.code)
		}
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, zap.NewNop(), errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal error" {
		t.Fatalf("internal detail leaked: %q", body["error"])
	}
}
