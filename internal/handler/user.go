package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/avatar"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// UserHandler bundles the user registry endpoints with the avatar blob
// store they share.
type UserHandler struct {
	Users   *repository.UserRepo
	Avatars *avatar.Store
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *repository.UserRepo, avatars *avatar.Store) *UserHandler {
	return &UserHandler{Users: users, Avatars: avatars}
}

// CreateUser handles POST /v1/users.  Username is required; full name
// defaults to the username and an empty color is auto-assigned from the
// free palette.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Color    string `json:"color"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	id, user, err := h.Users.Create(body.Username, body.FullName, body.Color, "")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "user": user})
}

// ListUsers handles GET /v1/users and returns every registered user
// keyed by id.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /v1/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.Users.Get(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /v1/users/:id.  Absent fields are left
// untouched, so callers can patch a single attribute.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var body struct {
		Username *string `json:"username"`
		FullName *string `json:"full_name"`
		Color    *string `json:"color"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	user, err := h.Users.Update(c.Param("id"), repository.UpdateUserParams{
		Username: body.Username,
		FullName: body.FullName,
		Color:    body.Color,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /v1/users/:id.  The booking migration runs
// inside the repository; the orphaned avatar file is released afterwards
// on a best-effort basis.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	result, err := h.Users.Delete(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if result.AvatarPath != "" && h.Avatars != nil {
		h.Avatars.Remove(result.AvatarPath)
	}
	return c.JSON(http.StatusOK, result)
}

// FreeColors handles GET /v1/colors and returns the palette colors not
// yet taken by any user.  When all twelve are taken the full palette is
// returned so signup never dead-ends.
func (h *UserHandler) FreeColors(c echo.Context) error {
	colors, err := h.Users.FreeColors()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"colors": colors})
}

// UploadAvatar handles POST /v1/users/:id/avatar.  The image arrives as
// the multipart field "avatar", is resized server-side and stored under
// the user's id; the user record is updated to point at the new file.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.Users.Get(id); err != nil {
		return fail(c, err)
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "avatar file is required"})
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read avatar file"})
	}
	defer src.Close()

	path, err := h.Avatars.Save(id, fileHeader.Filename, src)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.Users.Update(id, repository.UpdateUserParams{Avatar: &path})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetAvatar handles GET /v1/users/:id/avatar and streams the stored
// image file.
func (h *UserHandler) GetAvatar(c echo.Context) error {
	path, ok := h.Avatars.Path(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no avatar for this user"})
	}
	return c.File(path)
}
