package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mealbridge/mealbridge-api/internal/core/ports"
)

// ctxCaller extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty user id
// and role prove the middleware ran.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return ports.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Caller{ID: id, Role: role}, nil
}
