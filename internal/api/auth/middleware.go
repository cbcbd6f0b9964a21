package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/aulavirtual/pkg/models"
)

// ContextKey represents keys for context values
type ContextKey string

const (
	// UserContextKey is where RequireAuth stores the authenticated principal
	UserContextKey ContextKey = "user"
)

// RequireAuth validates the Bearer token on every request and stores the
// resolved principal in the echo context.
func RequireAuth(tokenService *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			user, err := tokenService.ValidateAccessToken(tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(string(UserContextKey), user)

			return next(c)
		}
	}
}

// LoginRateLimit throttles credential-guessing attempts on the public auth
// endpoints. One shared limiter is enough: the instance is single-process.
func LoginRateLimit(requestsPerMinute int) echo.MiddlewareFunc {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo en un momento.")
			}
			return next(c)
		}
	}
}

// GetUser extracts the authenticated principal from the echo context
func GetUser(c echo.Context) *models.User {
	userInterface := c.Get(string(UserContextKey))
	if userInterface == nil {
		return nil
	}
	return userInterface.(*models.User)
}

// MustGetUser extracts the principal and panics if not found. Use this only
// in handlers guaranteed to run behind RequireAuth.
func MustGetUser(c echo.Context) *models.User {
	user := GetUser(c)
	if user == nil {
		panic("user not found in context - ensure RequireAuth is configured")
	}
	return user
}
