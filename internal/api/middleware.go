package api

import (
	"log"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"task-manager/internal/apperr"
	"task-manager/internal/auth"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// requireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func requireAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				return apperr.New(apperr.Unauthorized, "Not authorized, no token")
			}

			id, err := tokens.Verify(token)
			if err != nil {
				return apperr.New(apperr.Unauthorized, "Not authorized, token failed")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

// ownerID returns the authenticated user id set by requireAuth.
func ownerID(c echo.Context) (string, error) {
	id, ok := auth.IdentityFrom(c.Request().Context())
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "Not authorized")
	}
	return id.UserID, nil
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		// Let the error handler pick the status before it is logged.
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[info] %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}
