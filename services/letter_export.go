package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"letterhead/models"

	"gorm.io/gorm"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrDocumentNotFound  = errors.New("document not found")
)

// PDFRenderFunc turns a standalone HTML document into PDF bytes
type PDFRenderFunc func(ctx context.Context, html string) ([]byte, error)

// LetterExporter lays out a letter, renders it as PDF or DOCX, stores the
// file and records a GeneratedDocument
type LetterExporter struct {
	DB       *gorm.DB
	Renderer *LetterRenderer
	PDF      PDFRenderFunc
}

// NewLetterExporter returns an exporter printing PDFs with headless Chrome
func NewLetterExporter(db *gorm.DB, renderer *LetterRenderer, chromePath string) *LetterExporter {
	opts := LetterPDFOptions()
	opts.ExecPath = chromePath
	return &LetterExporter{
		DB:       db,
		Renderer: renderer,
		PDF: func(ctx context.Context, html string) ([]byte, error) {
			return GeneratePDF(ctx, html, opts)
		},
	}
}

// ExportResult is a generated file and its record
type ExportResult struct {
	Document *models.GeneratedDocument
	Data     []byte
	Layout   *LetterLayout
}

// Render produces the file bytes of a letter without storing them
func (e *LetterExporter) Render(ctx context.Context, user *models.User, letterID, format string) (*models.Letter, *ExportResult, error) {
	if format != models.FormatPDF && format != models.FormatDOCX {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	letter, err := GetLetter(e.DB, user.ID, letterID)
	if err != nil {
		return nil, nil, err
	}
	profile := ResolveLetterProfile(e.DB, letter)

	layout, err := e.Renderer.LayoutLetter(ctx, letter, profile, user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lay out letter: %w", err)
	}
	if err := SetLetterPageCount(e.DB, letter.ID, len(layout.Pages)); err != nil {
		log.Printf("[WARNING] Failed to record page count for letter %s: %v", letter.ID, err)
	}

	var data []byte
	switch format {
	case models.FormatPDF:
		html, err := RenderLetterHTML(ctx, layout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to render letter html: %w", err)
		}
		data, err = e.PDF(ctx, html)
		if err != nil {
			return nil, nil, err
		}
	case models.FormatDOCX:
		data, err = GenerateDOCX(layout)
		if err != nil {
			return nil, nil, err
		}
	}

	return letter, &ExportResult{Data: data, Layout: layout}, nil
}

// Export renders a letter, uploads the file and records it
func (e *LetterExporter) Export(ctx context.Context, user *models.User, letterID, format string) (*ExportResult, error) {
	start := time.Now()
	letter, result, err := e.Render(ctx, user, letterID, format)
	if err != nil {
		return nil, err
	}

	doc := &models.GeneratedDocument{
		UserID:    user.ID,
		LetterID:  letter.ID,
		Format:    format,
		FileName:  SafeFileName(letter.Name) + "." + format,
		FileSize:  int64(len(result.Data)),
		PageCount: len(result.Layout.Pages),
	}

	key := GenerateLetterExportKey(user.ID, letter.ID, format)
	stored, err := StoreBytes(ctx, result.Data, key, doc.MimeType())
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}
	doc.FilePath = stored.Key

	if err := e.DB.Create(doc).Error; err != nil {
		if delErr := Storage.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("[WARNING] Failed to remove orphaned export %s: %v", stored.Key, delErr)
		}
		return nil, fmt.Errorf("failed to record export: %w", err)
	}

	log.Printf("[INFO] Exported letter %s as %s (%d pages, %d bytes) in %s",
		letter.ID, format, doc.PageCount, doc.FileSize, time.Since(start).Round(time.Millisecond))
	result.Document = doc
	return result, nil
}

// ListLetterDocuments returns the exports of one of the user's letters, newest first
func ListLetterDocuments(db *gorm.DB, userID, letterID string) ([]models.GeneratedDocument, error) {
	var docs []models.GeneratedDocument
	err := db.Where("user_id = ? AND letter_id = ?", userID, letterID).Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// ListRecentDocuments returns the user's latest exports across all letters
func ListRecentDocuments(db *gorm.DB, userID string, limit int) ([]models.GeneratedDocument, error) {
	var docs []models.GeneratedDocument
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// GetGeneratedDocument returns one of the user's exports
func GetGeneratedDocument(db *gorm.DB, userID, documentID string) (*models.GeneratedDocument, error) {
	var doc models.GeneratedDocument
	err := db.Where("user_id = ? AND id = ?", userID, documentID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// RemoveStoredDocuments deletes export files from storage, logging failures
func RemoveStoredDocuments(ctx context.Context, docs []models.GeneratedDocument) {
	if Storage == nil {
		return
	}
	for _, d := range docs {
		if err := Storage.Delete(ctx, d.FilePath); err != nil {
			log.Printf("[WARNING] Failed to delete stored export %s: %v", d.FilePath, err)
		}
	}
}

// PurgeExpiredExports removes exports created before the cutoff, files first
func PurgeExpiredExports(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var docs []models.GeneratedDocument
	if err := db.Where("created_at < ?", cutoff).Find(&docs).Error; err != nil {
		return 0, fmt.Errorf("failed to find expired exports: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	RemoveStoredDocuments(ctx, docs)

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	result := db.Where("id IN ?", ids).Delete(&models.GeneratedDocument{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired exports: %w", result.Error)
	}
	log.Printf("[INFO] Purged %d expired exports", result.RowsAffected)
	return result.RowsAffected, nil
}
