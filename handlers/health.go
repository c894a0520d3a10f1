package handlers

import (
	"net/http"

	"letterhead/db"

	"github.com/labstack/echo/v4"
)

// HealthzHandler reports whether the database answers
func HealthzHandler(c echo.Context) error {
	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
