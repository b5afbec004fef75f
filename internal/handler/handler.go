// Package handler contains the Echo HTTP handlers.  Handlers map request
// bodies onto service and repository calls and translate the error taxonomy
// into HTTP statuses: 400 validation, 401 auth, 403 authorization, 404 not
// found, 409 conflict, 500 everything else.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/middleware"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// callerID returns the authenticated subject injected by the JWT middleware.
func callerID(c echo.Context) string {
	id, _ := c.Get(middleware.CtxUserID).(string)
	return id
}

// callerRole returns the role claim carried by the caller's token.  Handlers
// with stricter requirements re-resolve the role from the users table.
func callerRole(c echo.Context) model.Role {
	role, _ := c.Get(middleware.CtxRole).(string)
	return model.ParseRole(role)
}
