package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"letterhead/db"
	"letterhead/middleware"
	"letterhead/models"
	"letterhead/services"
	"letterhead/templates/pages"

	"github.com/labstack/echo/v4"
)

// LettersPageHandler renders the letters dashboard
func LettersPageHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cfg := getConfig(c)

	letters, err := services.ListLetters(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load letters")
	}
	profiles, err := services.ListBrandProfiles(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load brand profiles")
	}
	docs, err := services.ListRecentDocuments(db.DB, user.ID, 10)
	if err != nil {
		log.Printf("[WARNING] Failed to load recent exports for %s: %v", user.ID, err)
	}

	status := middleware.GetPlanStatus(c)
	if status == nil {
		if status, err = services.GetPlanStatus(db.DB, user, cfg.FreeLetterLimit); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load plan")
		}
	}

	view := pages.LettersView{
		Page:        pages.Page{Title: "Letters | Letterhead", CSRFToken: middleware.GetCSRFToken(c)},
		User:        user,
		Letters:     letters,
		Profiles:    profiles,
		Documents:   docs,
		LetterCount: status.LetterCount,
		LetterLimit: status.Letters.Limit,
		CanCreate:   status.Letters.Allowed,
		Now:         time.Now(),
	}
	return render(c, http.StatusOK, pages.Letters(view))
}

// ListLettersHandler returns the user's letters, most recently edited first
func ListLettersHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	letters, err := services.ListLetters(db.DB, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, letters)
}

// CreateLetterHandler saves a new letter. FREE accounts are limited.
func CreateLetterHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.LetterInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	letter, err := services.CreateLetter(db.DB, user, getConfig(c).FreeLetterLimit, in)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionCreate, "Letter", letter.ID, letter.Name, "Letter created")
	return c.JSON(http.StatusCreated, letter)
}

// GetLetterHandler returns one letter with its brand profile
func GetLetterHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	letter, err := services.GetLetter(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, letter)
}

// UpdateLetterHandler replaces a letter's fields
func UpdateLetterHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in services.LetterInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	letter, err := services.UpdateLetter(db.DB, user.ID, c.Param("id"), in)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionUpdate, "Letter", letter.ID, letter.Name, "Letter updated")
	return c.JSON(http.StatusOK, letter)
}

// DeleteLetterHandler removes a letter and its stored exports
func DeleteLetterHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	docs, err := services.DeleteLetter(db.DB, user.ID, id)
	if err != nil {
		return serviceError(c, err)
	}

	// Files go in the background, the rows are already gone
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		services.RemoveStoredDocuments(ctx, docs)
	}()

	audit(c, models.AuditActionDelete, "Letter", id, "", "Letter deleted")
	return c.NoContent(http.StatusNoContent)
}

// LetterHistoryHandler returns the audit trail of one letter
func LetterHistoryHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	letter, err := services.GetLetter(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	logs, err := services.GetResourceAuditHistory(db.DB, "Letter", letter.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// ExportLettersWorkbookHandler downloads the user's letters as .xlsx
func ExportLettersWorkbookHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	buf, err := services.ExportLettersWorkbook(db.DB, user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="letters.xlsx"`)
	return c.Blob(http.StatusOK, services.XLSXMimeType, buf.Bytes())
}

// RecipientTemplateHandler downloads the blank recipients workbook
func RecipientTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateRecipientTemplate()
	if err != nil {
		return serviceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="recipients_template.xlsx"`)
	return c.Blob(http.StatusOK, services.XLSXMimeType, buf.Bytes())
}

// ImportRecipientsHandler creates one letter per recipient row of an uploaded
// workbook (multipart "file"), cloned from the letter in the path. With
// ?dry_run=true it only counts the rows.
func ImportRecipientsHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "A recipients workbook is required")
	}
	if fileHeader.Size > services.MaxUploadSize {
		return jsonError(c, http.StatusBadRequest, "Workbook exceeds the 2MB limit")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Failed to read upload")
	}
	defer file.Close()

	if c.QueryParam("dry_run") == "true" {
		rows, err := services.AnalyzeRecipientFile(file)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]int{"rows": rows})
	}

	result, err := services.ImportRecipients(db.DB, user, getConfig(c).FreeLetterLimit, c.Param("id"), file)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionCreate, "Letter", c.Param("id"), "",
		"Recipients imported")
	return c.JSON(http.StatusOK, result)
}

// TemplateVariablesHandler lists the {{placeholders}} a letter body may use
func TemplateVariablesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.GetVariableDictionary())
}
