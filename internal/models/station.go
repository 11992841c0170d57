package models

import "time"

// Charging current types.
const (
	StationTypeAC = "AC"
	StationTypeDC = "DC"
)

// ScheduleWindow is a recurring weekly operating window of a station.
// Times are "HH:mm" in UTC. SlotCount is the advertised concurrent
// capacity during the window; the binding constraint stays at the
// slot level.
type ScheduleWindow struct {
	DayOfWeek int    `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SlotCount int    `json:"slot_count"`
}

// Slot is a single physical charging bay within a station.
type Slot struct {
	ID            string   `json:"id"`
	Code          string   `json:"code"`
	IsActive      bool     `json:"is_active"`
	ConnectorType string   `json:"connector_type,omitempty"` // e.g. "Type2", "CCS", "CHAdeMO"
	PowerKw       *float64 `json:"power_kw,omitempty"`
}

// Station is the aggregate root: identity, location, operating schedule
// and the slot collection. Schedules and slots are owned exclusively by
// the station and persisted with it as one document.
type Station struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Address   string           `json:"address"`
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Type      string           `json:"type"` // "AC" or "DC"
	IsActive  bool             `json:"is_active"`
	Schedules []ScheduleWindow `json:"schedules"`
	Slots     []Slot           `json:"slots"`
	Version   int64            `json:"-"` // optimistic concurrency token
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	CreatedBy string           `json:"created_by,omitempty"`
	UpdatedBy string           `json:"updated_by,omitempty"`
}

// SlotByID returns the slot with the given id, or nil.
func (s *Station) SlotByID(id string) *Slot {
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			return &s.Slots[i]
		}
	}
	return nil
}

// ActiveSlotCount returns how many slots are currently active.
func (s *Station) ActiveSlotCount() int {
	n := 0
	for i := range s.Slots {
		if s.Slots[i].IsActive {
			n++
		}
	}
	return n
}
