package auth

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"medtrack/internal/errors"
)

const bearerPrefix = "Bearer "

// RequireUser authenticates user tokens and stores a UserPrincipal on the
// context.
func RequireUser(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateUserToken(token)
			if err != nil {
				return nil, err
			}
			return UserPrincipal{ID: claims.UserID, Username: claims.Username}, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasBearerToken(c) {
				return errors.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}
			return errors.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		},
	})
}

// RequireAdmin authenticates admin tokens and stores an AdminPrincipal on the
// context. A valid user token is still forbidden here.
func RequireAdmin(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateAdminToken(token)
			if err != nil {
				return nil, err
			}
			return AdminPrincipal{Username: claims.Username}, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasBearerToken(c) {
				return errors.NewHTTPError(http.StatusUnauthorized, "Admin access token required")
			}
			return errors.NewHTTPError(http.StatusForbidden, "Invalid or unauthorized admin token")
		},
	})
}

func hasBearerToken(c echo.Context) bool {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]) != ""
}
