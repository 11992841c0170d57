package service

import "errors"

// Stable reason codes for business-rule violations. Handlers map these
// to protocol responses; the codes themselves are part of the API.
const (
	CodeInvalidTimeFormat  = "invalid_time_format"
	CodeInvalidCapacity    = "invalid_capacity"
	CodeInvalidWindowOrder = "invalid_window_order"
	CodeOverlappingWindow  = "overlapping_window"
	CodeDuplicateSlotCode  = "duplicate_slot_code"
	CodeSlotUnavailable    = "slot_unavailable"
	CodeTooLateToModify    = "too_late_to_modify"
	CodeOutOfWindow        = "out_of_window"
	CodeNotFound           = "not_found"
	CodeInvalidTransition  = "invalid_transition"
	CodeAlreadyActive      = "already_active"
	CodeHasActiveBookings  = "has_active_bookings"
	CodeStationInactive    = "station_inactive"
	CodeSlotInactive       = "slot_inactive"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateUsername  = "duplicate_username"
	CodeDuplicateNIC       = "duplicate_nic"
	CodeDuplicateEmail     = "duplicate_email"
	CodeOwnerInactive      = "owner_inactive"
)

// Error is an expected, user-facing business-rule violation. Anything
// else returned by the engine is an infrastructure failure and is
// surfaced as-is.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a business-rule violation.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsBusiness extracts a business-rule violation from an error chain.
func AsBusiness(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
