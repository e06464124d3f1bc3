package handlers

import (
	"net/http"
	"strings"

	"gudangmitra/internal/common"
	"gudangmitra/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles HTTP requests for authentication
type AuthHandlers struct {
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandlers(authService services.AuthService, userService services.UserService) *AuthHandlers {
	return &AuthHandlers{authService: authService, userService: userService}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	tokens, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, tokens)
}

// Register handles POST /auth/register. Self-registration always yields a
// requester account; elevated roles come from CreateUser.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req struct {
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		Department *string `json:"department"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password, "", req.Department)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondCreated(c, user)
}

// CreateUser handles POST /users (admin only) and may assign any role
func (h *AuthHandlers) CreateUser(c echo.Context) error {
	var req struct {
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		Role       string  `json:"role"`
		Department *string `json:"department"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role, req.Department)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondCreated(c, user)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, tokens)
}

// Logout handles POST /auth/logout by revoking the presented access token
func (h *AuthHandlers) Logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return common.RespondFail(c, http.StatusBadRequest, "missing token")
	}

	if err := h.authService.RevokeToken(c.Request().Context(), tokenString); err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, map[string]string{"message": "logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
	}

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, user)
}
