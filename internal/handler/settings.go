package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/repository"
)

// SettingsHandler serves the shared office settings: team news, desk
// display names and office holidays.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(settings *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

// GetSettings handles GET /v1/settings and returns the whole settings
// document.
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.Settings.Settings()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// SetTeamNews handles PUT /v1/settings/news.  Text over the length
// limit is rejected, not truncated; an empty string clears the banner.
func (h *SettingsHandler) SetTeamNews(c echo.Context) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.Settings.SetTeamNews(body.Text); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// SetDeskName handles PUT /v1/settings/desk-names/:room/:desk.  Names
// over the limit are silently truncated; a blank name restores the
// default label.
func (h *SettingsHandler) SetDeskName(c echo.Context) error {
	desk, err := parseDeskParam(c.Param("desk"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.Settings.SetDeskName(c.Param("room"), desk, body.Name); err != nil {
		return fail(c, err)
	}
	name, err := h.Settings.DeskName(c.Param("room"), desk)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"name": name})
}

// AddHoliday handles PUT /v1/settings/holidays/:date.  The date arrives
// in the display format DD.MM.YYYY and is stored keyed by its ISO form;
// re-adding an existing date overwrites it.
func (h *SettingsHandler) AddHoliday(c echo.Context) error {
	holiday, err := h.Settings.AddHoliday(c.Param("date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, holiday)
}

// RemoveHoliday handles DELETE /v1/settings/holidays/:date where :date
// is the ISO key.  Removing an unknown date is a no-op.
func (h *SettingsHandler) RemoveHoliday(c echo.Context) error {
	if _, err := parseDateParam(c.Param("date")); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
	}
	if err := h.Settings.RemoveHoliday(c.Param("date")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}
