package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"letterhead/db"
	"letterhead/middleware"
	"letterhead/models"
	"letterhead/services"
	"letterhead/templates/pages"

	"github.com/labstack/echo/v4"
)

type credentialsRequest struct {
	Name           string `json:"name" form:"name"`
	Email          string `json:"email" form:"email"`
	Password       string `json:"password" form:"password"`
	TurnstileToken string `json:"turnstile_token" form:"cf-turnstile-response"`
}

func authPage(c echo.Context, title string) pages.Page {
	return pages.Page{
		Title:            title + " | Letterhead",
		CSRFToken:        middleware.GetCSRFToken(c),
		TurnstileSiteKey: getConfig(c).TurnstileSiteKey,
	}
}

// LoginHandler renders the login page
func LoginHandler(c echo.Context) error {
	return render(c, http.StatusOK, pages.Login(authPage(c, "Sign in"), ""))
}

// authFailure answers a failed login or signup in the form the client asked for
func authFailure(c echo.Context, status int, message string) error {
	switch {
	case middleware.IsAPIRequest(c):
		return jsonError(c, status, message)
	case isHTMX(c):
		return render(c, http.StatusOK, pages.Alert("error", message))
	default:
		return render(c, status, pages.Login(authPage(c, "Sign in"), message))
	}
}

// authSuccess starts a session for user and sends the client to the letters page
func authSuccess(c echo.Context, user *models.User, status int) error {
	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		log.Printf("[WARNING] Failed to create session for %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}
	middleware.SetSessionCookie(c, session)

	switch {
	case middleware.IsAPIRequest(c):
		return c.JSON(status, map[string]interface{}{"user": user})
	case isHTMX(c):
		c.Response().Header().Set("HX-Redirect", "/letters")
		return c.NoContent(http.StatusOK)
	default:
		return c.Redirect(http.StatusSeeOther, "/letters")
	}
}

// LoginPostHandler handles the login form or JSON submission
func LoginPostHandler(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return authFailure(c, http.StatusBadRequest, "Invalid request")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return authFailure(c, http.StatusBadRequest, "Email and password are required")
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountLocked):
			return authFailure(c, http.StatusLocked, "Account is locked. Try again later.")
		case errors.Is(err, services.ErrAccountInactive):
			return authFailure(c, http.StatusForbidden, "Your account has been deactivated")
		case errors.Is(err, services.ErrInvalidCredentials):
			services.Monitor.TrackFailedLogin(c.RealIP())
			return authFailure(c, http.StatusUnauthorized, "Invalid email or password")
		}
		log.Printf("[WARNING] Login failed: %v", err)
		return authFailure(c, http.StatusInternalServerError, "Something went wrong")
	}

	services.LogAuditEvent(db.DB, services.AuditContextFor(user, c.RealIP(), c.Request().UserAgent()),
		models.AuditActionLogin, "User", user.ID, user.Name, "User logged in", nil, nil)

	return authSuccess(c, user, http.StatusOK)
}

// SignupPostHandler registers a FREE account, gives it a starter brand
// profile and signs it in
func SignupPostHandler(c echo.Context) error {
	cfg := getConfig(c)

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return authFailure(c, http.StatusBadRequest, "Invalid request")
	}

	if cfg.TurnstileSecretKey != "" {
		if ok, err := services.VerifyTurnstileToken(c.Request().Context(), req.TurnstileToken, cfg.TurnstileSecretKey, c.RealIP()); !ok {
			log.Printf("[SECURITY] Signup captcha rejected from %s: %v", c.RealIP(), err)
			return authFailure(c, http.StatusBadRequest, "Please complete the verification challenge")
		}
	}

	user, err := services.RegisterUser(db.DB, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return authFailure(c, http.StatusConflict, err.Error())
		}
		return authFailure(c, http.StatusBadRequest, err.Error())
	}

	starter := models.DefaultBrandProfile()
	if _, err := services.CreateBrandProfile(db.DB, user.ID, services.BrandProfileInput{
		Name:    starter.CompanyName,
		Address: starter.Address,
		Website: starter.Website,
	}); err != nil {
		log.Printf("[WARNING] Failed to create starter profile for %s: %v", user.ID, err)
	}

	services.SendEmailAsync(cfg, services.BuildWelcomeEmail(user.Email, user.Name))
	services.LogAuditEvent(db.DB, services.AuditContextFor(user, c.RealIP(), c.Request().UserAgent()),
		models.AuditActionCreate, "User", user.ID, user.Name, "Account created", nil, nil)

	return authSuccess(c, user, http.StatusCreated)
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		audit(c, models.AuditActionLogout, "User", user.ID, user.Name, "User logged out")
	}

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			log.Printf("[WARNING] Failed to delete session: %v", err)
		}
	}
	middleware.ClearSessionCookie(c)

	switch {
	case middleware.IsAPIRequest(c):
		return c.NoContent(http.StatusNoContent)
	case isHTMX(c):
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	default:
		return c.Redirect(http.StatusSeeOther, "/login")
	}
}

// GetCurrentUserHandler returns the signed-in user and their plan
func GetCurrentUserHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	status, err := services.GetPlanStatus(db.DB, user, getConfig(c).FreeLetterLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
		"plan": status,
	})
}
