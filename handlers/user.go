package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"letterhead/db"
	"letterhead/models"
	"letterhead/services"

	"github.com/labstack/echo/v4"
)

// UserStatusHandler returns the user's plan and letter usage
func UserStatusHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	status, err := services.GetPlanStatus(db.DB, user, getConfig(c).FreeLetterLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// UpgradePlanHandler moves the user to PRO. Payment is handled elsewhere.
func UpgradePlanHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := services.UpgradePlan(db.DB, user); err != nil {
		if errors.Is(err, services.ErrAlreadyPro) {
			return jsonError(c, http.StatusConflict, err.Error())
		}
		return serviceError(c, err)
	}
	audit(c, models.AuditActionUpgrade, "User", user.ID, user.Name, "Upgraded to PRO")

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/letters")
		return c.NoContent(http.StatusOK)
	}
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		return c.Redirect(http.StatusSeeOther, "/letters")
	}
	status, err := services.GetPlanStatus(db.DB, user, getConfig(c).FreeLetterLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// UserActivityHandler returns the user's recent audit log
func UserActivityHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	logs, err := services.GetUserAuditLogs(db.DB, user.ID, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// SecurityAlertsHandler lists recent failed-login alerts for admins
func SecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Monitor.RecentAlerts())
}
