package handlers

import (
	"net/http"
	"strconv"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandlers handles HTTP requests for user management
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.userService.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, users)
}

// GetUser handles GET /users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid user ID")
	}

	// Profiles carry email and department; only admins may read other users'.
	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)
	if actorID != id && !models.RoleAtLeast(actorRole, models.RoleAdmin) {
		return common.RespondFail(c, http.StatusForbidden, "cannot view another user's profile")
	}

	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, user)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid user ID")
	}

	var req struct {
		Name       string  `json:"name"`
		Role       string  `json:"role"`
		Department *string `json:"department"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	actorRole, _ := common.GetRoleFromContext(ctx)
	user := &models.User{
		ID:         id,
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
	}
	updated, err := h.userService.UpdateUser(ctx, user, actorRole)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, updated)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, map[string]string{"message": "user deleted"})
}

// UploadAvatar handles POST /users/:id/avatar with a multipart image upload
func (h *UserHandlers) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid user ID")
	}

	// Users may only change their own avatar unless they are an admin.
	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)
	if actorID != id && !models.RoleAtLeast(actorRole, models.RoleAdmin) {
		return common.RespondFail(c, http.StatusForbidden, "cannot change another user's avatar")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "avatar file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "could not read avatar file")
	}
	defer src.Close()

	user, err := h.userService.UploadAvatar(ctx, id, fileHeader.Filename, src,
		fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, user)
}
