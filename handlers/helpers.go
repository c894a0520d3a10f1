package handlers

import (
	"errors"
	"log"
	"net/http"

	"letterhead/config"
	"letterhead/db"
	"letterhead/middleware"
	"letterhead/models"
	"letterhead/services"
	"letterhead/services/pagination"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{Environment: "development", FreeLetterLimit: 1, EmailTestMode: true}
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// jsonError writes the API error body {"error": message}
func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// currentUser returns the authenticated user. Routes using it sit behind
// RequireAuth, so a missing user is a 401.
func currentUser(c echo.Context) (*models.User, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return user, nil
}

// serviceError maps service and pagination errors onto API responses
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrLetterNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrDocumentNotFound):
		return jsonError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrLetterLimitReached):
		return jsonError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidLetter),
		errors.Is(err, services.ErrInvalidProfile),
		errors.Is(err, services.ErrInvalidUpload),
		errors.Is(err, services.ErrUnsupportedFormat):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pagination.ErrInvalidGeometry),
		errors.Is(err, pagination.ErrInvalidInput):
		return jsonError(c, http.StatusUnprocessableEntity, err.Error())
	}

	log.Printf("[WARNING] %s %s failed: %v", c.Request().Method, c.Path(), err)
	return jsonError(c, http.StatusInternalServerError, "Something went wrong")
}

func audit(c echo.Context, action models.AuditAction, resourceType, resourceID, resourceName, description string) {
	auditCtx := middleware.GetAuditContext(c)
	if auditCtx.UserID == "" {
		auditCtx = services.AuditContextFor(middleware.GetCurrentUser(c), c.RealIP(), c.Request().UserAgent())
	}
	services.LogAuditEvent(db.DB, auditCtx, action, resourceType, resourceID, resourceName, description, nil, nil)
}
