package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"letterhead/config"
	"letterhead/db"
	"letterhead/middleware"
	"letterhead/models"
	"letterhead/services"
	"letterhead/services/pagination"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testConfig = &config.Config{
	Environment:     "test",
	FreeLetterLimit: 1,
	EmailTestMode:   true,
	AppURL:          "http://localhost:8080",
}

// setupTestDB swaps the global database and storage for private test ones
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.BrandProfile{},
		&models.Letter{},
		&models.GeneratedDocument{},
		&models.AuditLog{},
	))

	prevDB, prevStorage := db.DB, services.Storage
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	t.Cleanup(func() {
		services.WaitForAuditWrites()
		db.DB, services.Storage = prevDB, prevStorage
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email, plan string) *models.User {
	t.Helper()
	hash, err := services.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		Name:     "Ada Writer",
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Plan:     plan,
		IsActive: true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

// newContext builds an echo context for a JSON request, signed in as user when non-nil
func newContext(e *echo.Echo, method, target string, body interface{}, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("config", testConfig)
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
	}
	return c, rec
}

// fixedMeasurer reports every block as h pixels tall
func fixedMeasurer(h float64) pagination.Measurer {
	return pagination.MeasureFunc(func(ctx context.Context, markup string, widthPx float64, style pagination.StyleContext) (float64, error) {
		return h, nil
	})
}

func newTestComposer(testDB *gorm.DB) *Composer {
	renderer := services.NewLetterRenderer(fixedMeasurer(100), pagination.A4Geometry())
	exporter := &services.LetterExporter{
		DB:       testDB,
		Renderer: renderer,
		PDF: func(ctx context.Context, html string) ([]byte, error) {
			return []byte("%PDF-1.7 test"), nil
		},
	}
	return NewComposer(renderer, exporter)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func paragraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<p>Paragraph</p>")
	}
	return b.String()
}
