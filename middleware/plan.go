package middleware

import (
	"log"
	"net/http"

	"letterhead/config"
	"letterhead/db"
	"letterhead/services"

	"github.com/labstack/echo/v4"
)

// ContextKeyPlanStatus is the context key for the user's plan status
const ContextKeyPlanStatus = "plan_status"

// defaultFreeLetterLimit applies when no config is on the context
const defaultFreeLetterLimit = 1

func freeLetterLimit(c echo.Context) int {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg.FreeLetterLimit
	}
	return defaultFreeLetterLimit
}

// LoadPlanStatus loads the current user's plan and letter usage for display.
// It never blocks the request.
func LoadPlanStatus() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return next(c)
			}

			status, err := services.GetPlanStatus(db.DB, user, freeLetterLimit(c))
			if err != nil {
				log.Printf("[WARNING] Failed to load plan status for user %s: %v", user.ID, err)
				return next(c)
			}
			c.Set(ContextKeyPlanStatus, status)

			return next(c)
		}
	}
}

// GetPlanStatus retrieves the plan status from context
func GetPlanStatus(c echo.Context) *services.PlanStatus {
	status, ok := c.Get(ContextKeyPlanStatus).(*services.PlanStatus)
	if !ok {
		return nil
	}
	return status
}

// RequireLetterQuota rejects letter creation once a FREE user has used up
// their saved letters. HTMX requests are pointed at the upgrade section.
func RequireLetterQuota() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			check, err := services.CheckLetterLimit(db.DB, user, freeLetterLimit(c))
			if err != nil {
				log.Printf("[WARNING] Failed to check letter limit for user %s: %v", user.ID, err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check plan limits")
			}
			if check.Allowed {
				return next(c)
			}

			if c.Request().Header.Get("HX-Request") == "true" {
				c.Response().Header().Set("HX-Redirect", "/letters#upgrade")
				return c.NoContent(http.StatusForbidden)
			}
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"error": check.Message,
				"limit": check,
			})
		}
	}
}
