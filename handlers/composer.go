package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"letterhead/db"
	"letterhead/models"
	"letterhead/services"
	"letterhead/services/pagination"
	"letterhead/templates/document"

	"github.com/labstack/echo/v4"
)

// Composer serves the endpoints that lay out and export letters
type Composer struct {
	Renderer *services.LetterRenderer
	Exporter *services.LetterExporter
}

// NewComposer wires the composer endpoints to a renderer and exporter
func NewComposer(renderer *services.LetterRenderer, exporter *services.LetterExporter) *Composer {
	return &Composer{Renderer: renderer, Exporter: exporter}
}

// paginateRequest is either a list of measured blocks, or a letter body the
// server splits and measures itself
type paginateRequest struct {
	Blocks    []pagination.ContentBlock `json:"blocks"`
	Geometry  *pagination.PageGeometry  `json:"geometry"`
	Modifiers *pagination.PageModifiers `json:"modifiers"`

	Body             *string `json:"body"`
	ProfileID        string  `json:"profile_id"`
	RecipientName    string  `json:"recipient_name"`
	RecipientAddress string  `json:"recipient_address"`
	Subject          string  `json:"subject"`
}

type paginateResponse struct {
	PageCount int               `json:"page_count"`
	Pages     []pagination.Page `json:"pages"`
	Degraded  bool              `json:"degraded,omitempty"`
}

// PaginateHandler runs the page fitter. Invalid geometry or blocks are 422.
func (h *Composer) PaginateHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req paginateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}

	if req.Body != nil {
		return h.paginateBody(c, user, req)
	}

	geometry := h.Renderer.Geometry
	if req.Geometry != nil {
		geometry = *req.Geometry
	}
	var modifiers pagination.PageModifiers
	if req.Modifiers != nil {
		modifiers = *req.Modifiers
	}
	if req.Blocks == nil {
		req.Blocks = []pagination.ContentBlock{}
	}

	pages, err := pagination.Paginate(req.Blocks, geometry, modifiers)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paginateResponse{PageCount: len(pages), Pages: pages})
}

func (h *Composer) paginateBody(c echo.Context, user *models.User, req paginateRequest) error {
	profile, err := h.profileFor(user, req.ProfileID)
	if err != nil {
		return serviceError(c, err)
	}

	renderer := h.Renderer
	if req.Geometry != nil {
		r := *h.Renderer
		r.Geometry = *req.Geometry
		renderer = &r
	}

	meta := ""
	if req.RecipientName != "" || req.RecipientAddress != "" || req.Subject != "" {
		meta = document.MetaMarkup(req.RecipientName, req.RecipientAddress, req.Subject)
	}
	layout, err := renderer.LayoutBody(c.Request().Context(), meta, services.SanitizeLetterBody(*req.Body), profile)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paginateResponse{
		PageCount: len(layout.Pages),
		Pages:     layout.Pages,
		Degraded:  layout.Degraded,
	})
}

// profileFor picks the named profile, else the user's default, else the built-in one
func (h *Composer) profileFor(user *models.User, profileID string) (*models.BrandProfile, error) {
	if profileID != "" {
		return services.GetBrandProfile(db.DB, user.ID, profileID)
	}
	profile, err := services.GetDefaultBrandProfile(db.DB, user.ID)
	if errors.Is(err, services.ErrProfileNotFound) {
		p := models.DefaultBrandProfile()
		return &p, nil
	}
	return profile, err
}

// PreviewHandler renders a saved letter's pages as a standalone HTML document
func (h *Composer) PreviewHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	letter, err := services.GetLetter(db.DB, user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLetterNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Letter not found")
		}
		return err
	}
	layout, err := h.Renderer.LayoutLetter(ctx, letter, services.ResolveLetterProfile(db.DB, letter), user)
	if err != nil {
		return serviceError(c, err)
	}
	html, err := services.RenderLetterHTML(ctx, layout)
	if err != nil {
		return serviceError(c, err)
	}

	audit(c, models.AuditActionView, "Letter", letter.ID, letter.Name, "Letter previewed")
	return c.HTML(http.StatusOK, html)
}

// ExportPDFHandler generates, stores and streams a PDF of the letter
func (h *Composer) ExportPDFHandler(c echo.Context) error {
	return h.export(c, models.FormatPDF)
}

// ExportDOCXHandler generates, stores and streams a DOCX of the letter
func (h *Composer) ExportDOCXHandler(c echo.Context) error {
	return h.export(c, models.FormatDOCX)
}

func (h *Composer) export(c echo.Context, format string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	result, err := h.Exporter.Export(c.Request().Context(), user, c.Param("id"), format)
	if err != nil {
		return serviceError(c, err)
	}
	doc := result.Document

	audit(c, models.AuditActionExport, "Letter", doc.LetterID, doc.FileName,
		fmt.Sprintf("Exported %s (%d pages)", strings.ToUpper(format), doc.PageCount))

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Response().Header().Set("X-Document-ID", doc.ID)
	c.Response().Header().Set("X-Page-Count", fmt.Sprint(doc.PageCount))
	if missing := result.Layout.Unresolved; len(missing) > 0 {
		c.Response().Header().Set("X-Unresolved-Placeholders", strings.Join(missing, ","))
	}
	return c.Blob(http.StatusOK, doc.MimeType(), result.Data)
}

// ListDocumentsHandler returns the stored exports of a letter
func ListDocumentsHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if _, err := services.GetLetter(db.DB, user.ID, c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	docs, err := services.ListLetterDocuments(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// DownloadDocumentHandler serves a stored export. R2 files are handed out as
// short-lived signed URLs, local files are streamed.
func DownloadDocumentHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	doc, err := services.GetGeneratedDocument(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	audit(c, models.AuditActionDownload, "GeneratedDocument", doc.ID, doc.FileName, "Export downloaded")

	if _, remote := services.Storage.(*services.R2Storage); remote {
		url, err := services.Storage.SignedURL(ctx, doc.FilePath, 15*time.Minute)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Redirect(http.StatusFound, url)
	}

	data, _, err := services.ReadAll(ctx, doc.FilePath)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "The file is no longer available")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	return c.Blob(http.StatusOK, doc.MimeType(), data)
}

type emailLetterRequest struct {
	To      string `json:"to" form:"to"`
	Message string `json:"message" form:"message"`
}

// EmailLetterHandler renders the letter as PDF and emails it to a recipient
func (h *Composer) EmailLetterHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req emailLetterRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	to := strings.TrimSpace(req.To)
	if to == "" || !strings.Contains(to, "@") {
		return jsonError(c, http.StatusBadRequest, "A valid recipient email is required")
	}

	letter, result, err := h.Exporter.Render(c.Request().Context(), user, c.Param("id"), models.FormatPDF)
	if err != nil {
		return serviceError(c, err)
	}

	email := services.BuildLetterEmail(to, user.Name, user.Email, letter.Name, strings.TrimSpace(req.Message), result.Data)
	if err := services.SendEmail(getConfig(c), email); err != nil {
		return jsonError(c, http.StatusBadGateway, "Failed to send email")
	}

	audit(c, models.AuditActionEmail, "Letter", letter.ID, letter.Name, "Letter emailed to "+to)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Letter sent",
		"page_count": len(result.Layout.Pages),
	})
}
