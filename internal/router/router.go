// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/handler"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Users     *handler.UserHandler
	Bookings  *handler.BookingHandler
	Blockers  *handler.BlockerHandler
	Templates *handler.TemplateHandler
	Settings  *handler.SettingsHandler
}

// RegisterRoutes registers the health check on the provided Echo
// instance.  Load balancers and monitoring probe this endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the versioned API surface under /v1.  The
// service is a trusted office-internal tool, so no authentication
// middleware is applied; rate limiting and response caching are wired
// globally in main.
func RegisterAPI(e *echo.Echo, h Handlers) {
	v1 := e.Group("/v1")

	// User registry and per-user avatars.  The static /users/colors route
	// is registered alongside /users/:id; Echo resolves static segments
	// before parameters.
	v1.GET("/users", h.Users.ListUsers)
	v1.POST("/users", h.Users.CreateUser)
	v1.GET("/users/colors", h.Users.FreeColors)
	v1.GET("/users/:id", h.Users.GetUser)
	v1.PUT("/users/:id", h.Users.UpdateUser)
	v1.PATCH("/users/:id", h.Users.UpdateUser)
	v1.DELETE("/users/:id", h.Users.DeleteUser)
	v1.POST("/users/:id/avatar", h.Users.UploadAvatar)
	v1.GET("/users/:id/avatar", h.Users.GetAvatar)

	// Booking ledger and day views.
	v1.POST("/bookings", h.Bookings.CreateBooking)
	v1.DELETE("/bookings/:date/:room/:desk", h.Bookings.CancelBooking)
	v1.GET("/days/:date", h.Bookings.GetDay)
	v1.GET("/days/:date/availability", h.Bookings.GetAvailability)

	// Advisory room blockers.
	v1.POST("/blockers", h.Blockers.CreateBlocker)
	v1.GET("/blockers/:date/:room", h.Blockers.GetBlocker)
	v1.DELETE("/blockers/:date/:room", h.Blockers.DeleteBlocker)

	// Weekly booking templates.
	v1.GET("/users/:id/templates", h.Templates.ListTemplates)
	v1.PUT("/users/:id/templates/:name", h.Templates.SaveTemplate)
	v1.DELETE("/users/:id/templates/:name", h.Templates.DeleteTemplate)
	v1.POST("/users/:id/templates/validate", h.Templates.ValidateTemplate)
	v1.POST("/users/:id/templates/apply", h.Templates.ApplyTemplate)
	v1.GET("/weeks", h.Templates.FutureWeeks)

	// Shared office settings.
	v1.GET("/settings", h.Settings.GetSettings)
	v1.PUT("/settings/news", h.Settings.SetTeamNews)
	v1.PUT("/settings/desk-names/:room/:desk", h.Settings.SetDeskName)
	v1.PUT("/settings/holidays/:date", h.Settings.AddHoliday)
	v1.DELETE("/settings/holidays/:date", h.Settings.RemoveHoliday)
}
