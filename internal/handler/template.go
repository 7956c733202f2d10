package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/template"
)

// TemplateHandler serves the weekly booking template endpoints: manage
// a user's saved templates, preview a concrete week and materialise the
// chosen slots into bookings.
type TemplateHandler struct {
	Engine   *template.Engine
	Users    *repository.UserRepo
	Settings *repository.SettingsRepo
	// PublishEvents toggles broker notifications; disabled in tests.
	PublishEvents bool
}

// NewTemplateHandler constructs a TemplateHandler with event publishing
// enabled.
func NewTemplateHandler(engine *template.Engine, users *repository.UserRepo, settings *repository.SettingsRepo) *TemplateHandler {
	return &TemplateHandler{Engine: engine, Users: users, Settings: settings, PublishEvents: true}
}

// ListTemplates handles GET /v1/users/:id/templates.
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	templates, err := h.Engine.List(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// SaveTemplate handles PUT /v1/users/:id/templates/:name.  Saving under
// an existing name overwrites it; a new name beyond the per-user limit
// is rejected with 409.
func (h *TemplateHandler) SaveTemplate(c echo.Context) error {
	var body struct {
		Schedule map[string]model.BookingType `json:"schedule"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	tpl, err := h.Engine.Save(c.Param("id"), c.Param("name"), body.Schedule)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate handles DELETE /v1/users/:id/templates/:name.
func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	if err := h.Engine.Delete(c.Param("id"), c.Param("name")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// ValidateTemplate handles POST /v1/users/:id/templates/validate.  The
// body carries the week start and the schedule to project, which lets
// clients preview unsaved edits; each scheduled weekday comes back
// classified as applicable, blocked or past.
func (h *TemplateHandler) ValidateTemplate(c echo.Context) error {
	var body struct {
		WeekStart string                       `json:"week_start"`
		Schedule  map[string]model.BookingType `json:"schedule"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	weekStart, err := parseDateParam(body.WeekStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "week_start must be YYYY-MM-DD"})
	}
	if len(body.Schedule) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "schedule is required"})
	}
	result, err := h.Engine.ValidateApplication(c.Param("id"), weekStart, body.Schedule)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ApplyTemplate handles POST /v1/users/:id/templates/apply.  The body
// carries the caller's desk selections per weekday; slots taken since
// validation are skipped rather than failing the whole application.
func (h *TemplateHandler) ApplyTemplate(c echo.Context) error {
	var body struct {
		Selections map[string]template.Selection `json:"selections"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	created, err := h.Engine.Apply(c.Param("id"), body.Selections)
	if err != nil {
		return fail(c, err)
	}
	if h.PublishEvents {
		for _, booking := range created {
			publishCreated(h.Users, h.Settings, booking)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"created":  created,
		"booked":   len(created),
		"selected": len(body.Selections),
	})
}

// FutureWeeks handles GET /v1/weeks and lists the upcoming Mondays a
// template can be applied to.  Defaults to five weeks; ?n= overrides.
func (h *TemplateHandler) FutureWeeks(c echo.Context) error {
	n := 5
	if raw := c.QueryParam("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 26 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "n must be between 1 and 26"})
		}
		n = parsed
	}
	return c.JSON(http.StatusOK, h.Engine.FutureWeeks(n))
}
