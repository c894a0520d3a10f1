package main

import (
	"net/http"

	"letterhead/config"
	"letterhead/handlers"
	"letterhead/middleware"
	"letterhead/models"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// newServer builds the echo instance with middleware and routes
func newServer(cfg *config.Config, composer *handlers.Composer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.CSPNonce())
	e.Use(middleware.CSRF(cfg))

	// Static files
	e.Static("/static", "static")

	// Public routes (no authentication required)
	e.GET("/healthz", handlers.HealthzHandler)
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/letters") })
	e.GET("/login", handlers.LoginHandler)
	e.POST("/login", handlers.LoginPostHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/signup", handlers.SignupPostHandler, middleware.SignupRateLimiter.Middleware())
	e.GET("/forgot-password", handlers.ForgotPasswordHandler)
	e.POST("/forgot-password", handlers.ForgotPasswordPostHandler, middleware.PasswordResetRateLimiter.Middleware())
	e.GET("/reset-password", handlers.ResetPasswordHandler)
	e.POST("/reset-password", handlers.ResetPasswordPostHandler, middleware.PasswordResetRateLimiter.Middleware())

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	protected.Use(middleware.APIRateLimiter.Middleware())
	{
		protected.GET("/letters", handlers.LettersPageHandler, middleware.LoadPlanStatus())
		protected.GET("/letters/:id/preview", composer.PreviewHandler)
		protected.POST("/logout", handlers.LogoutHandler)

		protected.GET("/api/me", handlers.GetCurrentUserHandler)
		protected.GET("/api/user/status", handlers.UserStatusHandler)
		protected.POST("/api/user/upgrade", handlers.UpgradePlanHandler)
		protected.GET("/api/user/activity", handlers.UserActivityHandler)

		// Brand profiles
		protected.GET("/api/profiles", handlers.ListProfilesHandler)
		protected.POST("/api/profiles", handlers.CreateProfileHandler)
		protected.PUT("/api/profiles/:id", handlers.UpdateProfileHandler)
		protected.DELETE("/api/profiles/:id", handlers.DeleteProfileHandler)
		protected.POST("/api/profiles/:id/default", handlers.SetDefaultProfileHandler)
		protected.POST("/api/profiles/:id/assets/:kind", handlers.UploadProfileAssetHandler)

		// Letters
		protected.GET("/api/letters", handlers.ListLettersHandler)
		protected.POST("/api/letters", handlers.CreateLetterHandler, middleware.RequireLetterQuota())
		protected.GET("/api/letters/export.xlsx", handlers.ExportLettersWorkbookHandler)
		protected.GET("/api/letters/:id", handlers.GetLetterHandler)
		protected.PUT("/api/letters/:id", handlers.UpdateLetterHandler)
		protected.DELETE("/api/letters/:id", handlers.DeleteLetterHandler)
		protected.GET("/api/letters/:id/history", handlers.LetterHistoryHandler)
		protected.GET("/api/letters/:id/documents", handlers.ListDocumentsHandler)
		protected.GET("/api/template-variables", handlers.TemplateVariablesHandler)
		protected.GET("/api/recipients/template.xlsx", handlers.RecipientTemplateHandler)
		protected.POST("/api/letters/:id/recipients", handlers.ImportRecipientsHandler)

		// Layout and export
		protected.POST("/api/paginate", composer.PaginateHandler)
		protected.POST("/api/letters/:id/pdf", composer.ExportPDFHandler, middleware.ExportRateLimiter.Middleware())
		protected.POST("/api/letters/:id/docx", composer.ExportDOCXHandler, middleware.ExportRateLimiter.Middleware())
		protected.POST("/api/letters/:id/email", composer.EmailLetterHandler, middleware.ExportRateLimiter.Middleware())
		protected.GET("/api/documents/:id/download", handlers.DownloadDocumentHandler)

		// Admin-only routes
		admin := protected.Group("/api/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/security-alerts", handlers.SecurityAlertsHandler)
		}
	}

	return e
}
