package models

import "time"

// Booking statuses. InProgress is set by the operator flow; it has no
// inbound transition here but blocks mutations like any live status.
const (
	BookingStatusPending    = "Pending"
	BookingStatusApproved   = "Approved"
	BookingStatusInProgress = "InProgress"
	BookingStatusCompleted  = "Completed"
	BookingStatusCancelled  = "Cancelled"
)

// Booking reserves one slot of one station for an absolute UTC interval
// [StartTime, EndTime). Bookings are never deleted; cancellation is a
// status so history stays available for conflict scans and audit.
type Booking struct {
	ID        string    `json:"id"`
	NIC       string    `json:"nic"` // owner's national id key
	Name      string    `json:"name"`
	StationID string    `json:"station_id"`
	SlotID    string    `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	QRToken   string    `json:"qr_token,omitempty"` // assigned on approval
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingDetails is the denormalized display view of a booking joined
// with its station and slot.
type BookingDetails struct {
	ID        string    `json:"id"`
	NIC       string    `json:"nic"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	StationID      string `json:"station_id"`
	StationName    string `json:"station_name"`
	StationAddress string `json:"station_address"`
	StationType    string `json:"station_type"`

	SlotID        string   `json:"slot_id"`
	SlotCode      string   `json:"slot_code"`
	ConnectorType string   `json:"connector_type,omitempty"`
	PowerKw       *float64 `json:"power_kw,omitempty"`
}
