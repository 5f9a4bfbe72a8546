package middleware

import (
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the request identifier in both directions.
const HeaderRequestID = "X-Request-ID"

// deny writes an error in the same envelope the handlers use.
func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}

// UserIDFromContext returns the authenticated subject, if any.
func UserIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserID).(string); ok {
		return val
	}
	return ""
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUserRole).(string); ok {
		return val
	}
	return ""
}
