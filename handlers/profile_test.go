package handlers

import (
	"net/http"
	"testing"

	"letterhead/models"
	"letterhead/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	user := createUser(t, testDB, "brand@example.com", models.PlanFree)
	e := echo.New()

	create := func(name string) models.BrandProfile {
		c, rec := newContext(e, http.MethodPost, "/api/profiles", map[string]string{
			"name":          name,
			"primary_color": "#1d4ed8",
		}, user)
		require.NoError(t, CreateProfileHandler(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		var p models.BrandProfile
		decode(t, rec, &p)
		return p
	}

	first := create("Acme")
	second := create("Acme Labs")
	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)

	t.Run("InvalidColor", func(t *testing.T) {
		c, rec := newContext(e, http.MethodPost, "/api/profiles", map[string]string{
			"name":          "Broken",
			"primary_color": "blue",
		}, user)
		require.NoError(t, CreateProfileHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("SetDefault", func(t *testing.T) {
		c, rec := newContext(e, http.MethodPost, "/api/profiles/"+second.ID+"/default", nil, user)
		c.SetParamNames("id")
		c.SetParamValues(second.ID)
		require.NoError(t, SetDefaultProfileHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		def, err := services.GetDefaultBrandProfile(testDB, user.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, def.ID)
	})

	t.Run("Update", func(t *testing.T) {
		c, rec := newContext(e, http.MethodPut, "/api/profiles/"+first.ID, map[string]string{
			"name":   "Acme Corp",
			"slogan": "Since 1999",
		}, user)
		c.SetParamNames("id")
		c.SetParamValues(first.ID)
		require.NoError(t, UpdateProfileHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"slogan":"Since 1999"`)
	})

	t.Run("List", func(t *testing.T) {
		c, rec := newContext(e, http.MethodGet, "/api/profiles", nil, user)
		require.NoError(t, ListProfilesHandler(c))
		var profiles []models.BrandProfile
		decode(t, rec, &profiles)
		assert.Len(t, profiles, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		c, rec := newContext(e, http.MethodDelete, "/api/profiles/"+first.ID, nil, user)
		c.SetParamNames("id")
		c.SetParamValues(first.ID)
		require.NoError(t, DeleteProfileHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		c, rec = newContext(e, http.MethodDelete, "/api/profiles/"+first.ID, nil, user)
		c.SetParamNames("id")
		c.SetParamValues(first.ID)
		require.NoError(t, DeleteProfileHandler(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
