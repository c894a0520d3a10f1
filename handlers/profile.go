package handlers

import (
	"net/http"

	"letterhead/db"
	"letterhead/models"
	"letterhead/services"

	"github.com/labstack/echo/v4"
)

// ListProfilesHandler returns the user's brand profiles, default first
func ListProfilesHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profiles, err := services.ListBrandProfiles(db.DB, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// CreateProfileHandler creates a brand profile
func CreateProfileHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.BrandProfileInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	profile, err := services.CreateBrandProfile(db.DB, user.ID, in)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionCreate, "BrandProfile", profile.ID, profile.CompanyName, "Brand profile created")
	return c.JSON(http.StatusCreated, profile)
}

// UpdateProfileHandler replaces a brand profile's fields
func UpdateProfileHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.BrandProfileInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	profile, err := services.UpdateBrandProfile(db.DB, user.ID, c.Param("id"), in)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionUpdate, "BrandProfile", profile.ID, profile.CompanyName, "Brand profile updated")
	return c.JSON(http.StatusOK, profile)
}

// SetDefaultProfileHandler makes a profile the user's default
func SetDefaultProfileHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := services.SetDefaultBrandProfile(db.DB, user.ID, c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProfileHandler removes a brand profile
func DeleteProfileHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := services.DeleteBrandProfile(db.DB, user.ID, id); err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionDelete, "BrandProfile", id, "", "Brand profile deleted")
	return c.NoContent(http.StatusNoContent)
}

// UploadProfileAssetHandler stores a logo or signature image (multipart "file")
func UploadProfileAssetHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "An image file is required")
	}
	profile, err := services.UploadBrandAsset(c.Request().Context(), db.DB, user.ID, c.Param("id"), c.Param("kind"), fileHeader)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionUpdate, "BrandProfile", profile.ID, profile.CompanyName, "Uploaded "+c.Param("kind"))
	return c.JSON(http.StatusOK, profile)
}
