package middleware

import (
	"context"
	"net/http"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig builds the echo-jwt configuration. On success the user ID and
// role land in the request context. Revocation is handled separately by
// RequireRevocationCheck.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		},
	}
}

// RequireRevocationCheck rejects tokens the auth service has denylisted.
// Runs after the JWT middleware so the claims are already verified.
func RequireRevocationCheck(authService services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
			}
			if authService.IsTokenRevoked(c.Request().Context(), claims.TokenID) {
				return common.RespondFail(c, http.StatusUnauthorized, "token revoked")
			}
			return next(c)
		}
	}
}

// RequireRole rejects requests whose authenticated role ranks below minRole.
func RequireRole(minRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
			}
			if !models.RoleAtLeast(role, minRole) {
				return common.RespondFail(c, http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
