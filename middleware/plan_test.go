package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"letterhead/config"
	"letterhead/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPlanTestDB(t *testing.T) *gorm.DB {
	testDB := setupTestDB(t)
	require.NoError(t, testDB.AutoMigrate(&models.BrandProfile{}, &models.Letter{}))
	return testDB
}

func planContext(e *echo.Echo, user *models.User, htmx bool) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/letters", strings.NewReader("{}"))
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("config", &config.Config{FreeLetterLimit: 1})
	if user != nil {
		c.Set(ContextKeyUser, user)
	}
	return c, rec
}

func TestRequireLetterQuota(t *testing.T) {
	testDB := setupPlanTestDB(t)
	e := echo.New()

	free := &models.User{Name: "Free", Email: "free@example.com", Password: "x", IsActive: true}
	pro := &models.User{Name: "Pro", Email: "pro@example.com", Password: "x", IsActive: true, Plan: models.PlanPro}
	require.NoError(t, testDB.Create(free).Error)
	require.NoError(t, testDB.Create(pro).Error)

	t.Run("FreeUserUnderLimit", func(t *testing.T) {
		c, rec := planContext(e, free, false)
		require.NoError(t, RequireLetterQuota()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	for _, u := range []*models.User{free, pro} {
		require.NoError(t, testDB.Create(&models.Letter{UserID: u.ID, Name: "Letter", Body: "<p>Hi</p>"}).Error)
	}

	t.Run("FreeUserAtLimit", func(t *testing.T) {
		c, rec := planContext(e, free, false)
		require.NoError(t, RequireLetterQuota()(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Upgrade to PRO")
	})

	t.Run("FreeUserAtLimitHTMX", func(t *testing.T) {
		c, rec := planContext(e, free, true)
		require.NoError(t, RequireLetterQuota()(okHandler)(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "/letters#upgrade", rec.Header().Get("HX-Redirect"))
	})

	t.Run("ProUserUnlimited", func(t *testing.T) {
		c, rec := planContext(e, pro, false)
		require.NoError(t, RequireLetterQuota()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NoUser", func(t *testing.T) {
		c, _ := planContext(e, nil, false)
		err := RequireLetterQuota()(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestLoadPlanStatus(t *testing.T) {
	testDB := setupPlanTestDB(t)
	e := echo.New()

	user := &models.User{Name: "Free", Email: "status@example.com", Password: "x", IsActive: true}
	require.NoError(t, testDB.Create(user).Error)

	c, rec := planContext(e, user, false)
	require.NoError(t, LoadPlanStatus()(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	status := GetPlanStatus(c)
	require.NotNil(t, status)
	assert.Equal(t, models.PlanFree, status.Plan)
	assert.Equal(t, int64(1), status.Letters.Limit)
	assert.True(t, status.Letters.Allowed)

	c, _ = planContext(e, nil, false)
	require.NoError(t, LoadPlanStatus()(okHandler)(c))
	assert.Nil(t, GetPlanStatus(c))
}
