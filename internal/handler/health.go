package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers 200 so load balancers and uptime probes can verify the
// service is running.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
