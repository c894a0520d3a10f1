package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"letterhead/db"
	"letterhead/middleware"
	"letterhead/services"
	"letterhead/templates/pages"

	"github.com/labstack/echo/v4"
)

const resetRequestedMessage = "If an account exists for that email, a reset link is on its way."

// ForgotPasswordHandler renders the reset request form
func ForgotPasswordHandler(c echo.Context) error {
	return render(c, http.StatusOK, pages.ForgotPassword(authPage(c, "Reset password")))
}

// ForgotPasswordPostHandler emails a reset link. The response is the same
// whether or not the email belongs to an account.
func ForgotPasswordPostHandler(c echo.Context) error {
	cfg := getConfig(c)
	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		return resetResponse(c, http.StatusBadRequest, "error", "Email is required")
	}

	token, err := services.GenerateResetToken(db.DB, email)
	if err != nil {
		log.Printf("[WARNING] Failed to create reset token: %v", err)
		return resetResponse(c, http.StatusInternalServerError, "error", "Something went wrong")
	}
	if token != nil && token.User != nil {
		link := strings.TrimRight(cfg.AppURL, "/") + "/reset-password?token=" + url.QueryEscape(token.Token)
		services.SendEmailAsync(cfg, services.BuildPasswordResetEmail(token.User.Email, token.User.Name, link))
	}

	return resetResponse(c, http.StatusOK, "success", resetRequestedMessage)
}

// ResetPasswordHandler renders the new-password form for a token
func ResetPasswordHandler(c echo.Context) error {
	token := c.QueryParam("token")
	valid := false
	if token != "" {
		_, err := services.ValidateResetToken(db.DB, token)
		valid = err == nil
	}
	return render(c, http.StatusOK, pages.ResetPassword(authPage(c, "Choose a new password"), token, valid))
}

// ResetPasswordPostHandler sets the new password
func ResetPasswordPostHandler(c echo.Context) error {
	token := c.FormValue("token")
	password := c.FormValue("password")
	if password != c.FormValue("password_confirm") {
		return resetResponse(c, http.StatusBadRequest, "error", "Passwords do not match")
	}

	if err := services.ResetPassword(db.DB, token, password); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) || errors.Is(err, services.ErrAccountInactive) {
			return resetResponse(c, http.StatusBadRequest, "error", "This reset link is invalid or has expired")
		}
		return resetResponse(c, http.StatusBadRequest, "error", err.Error())
	}

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	}
	if middleware.IsAPIRequest(c) {
		return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func resetResponse(c echo.Context, status int, kind, message string) error {
	switch {
	case middleware.IsAPIRequest(c):
		if kind == "error" {
			return jsonError(c, status, message)
		}
		return c.JSON(status, map[string]string{"message": message})
	case isHTMX(c):
		return render(c, http.StatusOK, pages.Alert(kind, message))
	}
	return c.String(status, message)
}
