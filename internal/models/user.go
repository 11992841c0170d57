package models

import "time"

// Back-office roles.
const (
	RoleAdmin           = "Admin"
	RoleBackoffice      = "Backoffice"
	RoleStationOperator = "StationOperator"
	RoleEVOwner         = "EVOwner"
)

// User is a back-office account (station operators and administrators).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
