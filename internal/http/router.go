package httpserver

import (
	"net/http"

	"evcharge/internal/http/handlers"
	"evcharge/internal/http/middleware"
	"evcharge/internal/metrics"
	"evcharge/internal/models"
	"evcharge/internal/service"
)

// Handlers groups the route handlers.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Stations *handlers.StationsHandler
	Bookings *handlers.BookingsHandler
	Owners   *handlers.OwnersHandler
	Users    *handlers.UsersHandler
	Health   http.HandlerFunc
}

// NewRouter registers endpoints with auth and role guards mirroring
// the operator/owner split.
func NewRouter(h Handlers, tokens *service.TokenService) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.Auth(tokens)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleBackoffice, models.RoleStationOperator)
	approvers := middleware.RequireRole(models.RoleBackoffice, models.RoleStationOperator)
	operators := middleware.RequireRole(models.RoleStationOperator)
	admins := middleware.RequireRole(models.RoleAdmin, models.RoleBackoffice)

	authed := func(fn http.HandlerFunc) http.Handler { return auth(fn) }
	staffOnly := func(fn http.HandlerFunc) http.Handler { return auth(staff(fn)) }
	adminOnly := func(fn http.HandlerFunc) http.Handler { return auth(admins(fn)) }

	mux.Handle("GET /health", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("POST /api/auth/register", http.HandlerFunc(h.Auth.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(h.Auth.Login))
	mux.Handle("POST /api/auth/owner-login", http.HandlerFunc(h.Auth.OwnerLogin))

	mux.Handle("GET /api/stations", staffOnly(h.Stations.List))
	mux.Handle("POST /api/stations", staffOnly(h.Stations.Create))
	mux.Handle("GET /api/stations/nearby", http.HandlerFunc(h.Stations.Nearby))
	mux.Handle("GET /api/stations/{id}", staffOnly(h.Stations.Get))
	mux.Handle("PUT /api/stations/{id}", staffOnly(h.Stations.Update))
	mux.Handle("DELETE /api/stations/{id}", staffOnly(h.Stations.Delete))
	mux.Handle("PUT /api/stations/{id}/schedule", staffOnly(h.Stations.UpdateSchedule))
	mux.Handle("POST /api/stations/{id}/activate", staffOnly(h.Stations.Activate))
	mux.Handle("POST /api/stations/{id}/deactivate", staffOnly(h.Stations.Deactivate))
	mux.Handle("GET /api/stations/{id}/slots", staffOnly(h.Stations.ListSlots))
	mux.Handle("POST /api/stations/{id}/slots", staffOnly(h.Stations.AddSlot))
	mux.Handle("PUT /api/stations/{id}/slots/{slotId}", staffOnly(h.Stations.UpdateSlot))
	mux.Handle("DELETE /api/stations/{id}/slots/{slotId}", staffOnly(h.Stations.DeleteSlot))
	mux.Handle("POST /api/stations/{id}/slots/{slotId}/deactivate", staffOnly(h.Stations.DeactivateSlot))

	mux.Handle("GET /api/bookings", staffOnly(h.Bookings.List))
	mux.Handle("GET /api/bookings/details", staffOnly(h.Bookings.ListDetails))
	mux.Handle("POST /api/bookings", authed(h.Bookings.Create))
	mux.Handle("GET /api/bookings/{id}", authed(h.Bookings.Get))
	mux.Handle("GET /api/bookings/{id}/details", authed(h.Bookings.GetDetails))
	mux.Handle("PUT /api/bookings/{id}", authed(h.Bookings.Update))
	mux.Handle("PATCH /api/bookings/{id}/cancel", authed(h.Bookings.Cancel))
	mux.Handle("PATCH /api/bookings/{id}/approve", auth(approvers(http.HandlerFunc(h.Bookings.Approve))))
	mux.Handle("PATCH /api/bookings/{id}/complete", auth(operators(http.HandlerFunc(h.Bookings.Complete))))
	mux.Handle("GET /api/bookings/owner/{nic}", authed(h.Bookings.ListByNIC))

	mux.Handle("GET /api/owners", staffOnly(h.Owners.List))
	mux.Handle("POST /api/owners", http.HandlerFunc(h.Owners.Create))
	mux.Handle("GET /api/owners/{nic}", authed(h.Owners.Get))
	mux.Handle("PUT /api/owners/{nic}", authed(h.Owners.Update))
	mux.Handle("DELETE /api/owners/{nic}", staffOnly(h.Owners.Delete))
	mux.Handle("POST /api/owners/{nic}/activate", staffOnly(h.Owners.Activate))
	mux.Handle("POST /api/owners/{nic}/deactivate", authed(h.Owners.Deactivate))

	mux.Handle("GET /api/users", adminOnly(h.Users.List))
	mux.Handle("GET /api/users/{id}", adminOnly(h.Users.Get))
	mux.Handle("PUT /api/users/{id}", adminOnly(h.Users.Update))
	mux.Handle("DELETE /api/users/{id}", adminOnly(h.Users.Delete))

	return metrics.Middleware(mux)
}
