package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"letterhead/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	sheetLetters    = "Letters"
	sheetRecipients = "Recipients"
)

// XLSXMimeType is the content type of an Excel workbook
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportResult contains the summary of a recipient import
type ImportResult struct {
	TotalProcessed        int      `json:"total_processed"`
	SuccessCount          int      `json:"success_count"`
	FailedCount           int      `json:"failed_count"`
	SkippedOverLimitCount int      `json:"skipped_over_limit_count"`
	Letters               []string `json:"letter_ids"`
	Errors                []string `json:"errors"`
}

// ExportLettersWorkbook lists a user's letters in a spreadsheet
func ExportLettersWorkbook(db *gorm.DB, userID string) (*bytes.Buffer, error) {
	letters, err := ListLetters(db, userID)
	if err != nil {
		return nil, err
	}
	profiles, err := ListBrandProfiles(db, userID)
	if err != nil {
		return nil, err
	}
	profileNames := make(map[string]string, len(profiles))
	for _, p := range profiles {
		profileNames[p.ID] = p.CompanyName
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetLetters)

	headers := []string{"Name", "Recipient", "Recipient Address", "Subject", "Brand Profile", "Pages", "Last Modified"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetLetters, cell, header)
	}

	for i, l := range letters {
		row := i + 2
		profile := ""
		if l.BrandProfileID != nil {
			profile = profileNames[*l.BrandProfileID]
		}
		values := []interface{}{
			l.Name,
			l.RecipientName,
			l.RecipientAddress,
			l.Subject,
			profile,
			l.PageCount,
			l.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetLetters, cell, v)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheetLetters, "A1", "G1", headerStyle)
	f.SetColWidth(sheetLetters, "A", "E", 28)
	f.SetColWidth(sheetLetters, "F", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// GenerateRecipientTemplate returns the workbook users fill in to create one
// letter per recipient from a base letter
func GenerateRecipientTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetRecipients)

	for i, header := range []string{"Recipient Name*", "Recipient Address", "Subject", "Letter Name"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetRecipients, cell, header)
	}
	f.SetCellValue(sheetRecipients, "A2", "Jane Smith")
	f.SetCellValue(sheetRecipients, "B2", "42 Harbour Street\nBristol BS1 4QA")
	f.SetCellValue(sheetRecipients, "C2", "Contract renewal")
	f.SetCellValue(sheetRecipients, "D2", "Renewal - Jane Smith")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheetRecipients, "A1", "D1", headerStyle)
	f.SetColWidth(sheetRecipients, "A", "D", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

type recipientRow struct {
	line       int
	name       string
	address    string
	subject    string
	letterName string
}

func readRecipientRows(file io.Reader) ([]recipientRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open excel file: %v", ErrInvalidUpload, err)
	}
	defer f.Close()

	sheet := sheetRecipients
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetList()[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipients sheet: %w", err)
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var out []recipientRow
	for i, row := range rows {
		if i == 0 {
			continue
		}
		r := recipientRow{
			line:       i + 1,
			name:       cell(row, 0),
			address:    cell(row, 1),
			subject:    cell(row, 2),
			letterName: cell(row, 3),
		}
		if r.name == "" && r.address == "" && r.subject == "" && r.letterName == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AnalyzeRecipientFile returns how many recipient rows a workbook holds
func AnalyzeRecipientFile(file io.Reader) (int, error) {
	rows, err := readRecipientRows(file)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ImportRecipients creates one letter per workbook row, copying the body and
// brand profile of the base letter. Rows past the FREE plan limit are skipped.
func ImportRecipients(db *gorm.DB, user *models.User, freeLimit int, baseLetterID string, file io.Reader) (*ImportResult, error) {
	base, err := GetLetter(db, user.ID, baseLetterID)
	if err != nil {
		return nil, err
	}
	rows, err := readRecipientRows(file)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}, Letters: []string{}}
	for _, r := range rows {
		result.TotalProcessed++
		if r.name == "" {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: recipient name is required", r.line))
			continue
		}

		name := r.letterName
		if name == "" {
			name = fmt.Sprintf("%s - %s", base.Name, r.name)
		}
		subject := r.subject
		if subject == "" {
			subject = base.Subject
		}

		letter, err := CreateLetter(db, user, freeLimit, LetterInput{
			Name:             name,
			ProfileID:        base.BrandProfileID,
			RecipientName:    r.name,
			RecipientAddress: r.address,
			Subject:          subject,
			Body:             base.Body,
		})
		if errors.Is(err, ErrLetterLimitReached) {
			result.SkippedOverLimitCount++
			continue
		}
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", r.line, err))
			continue
		}
		result.SuccessCount++
		result.Letters = append(result.Letters, letter.ID)
	}
	return result, nil
}
