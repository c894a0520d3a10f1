package services

import (
	"testing"

	"letterhead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportLettersWorkbook(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "sheet@example.com", models.PlanPro)
	profile, err := CreateBrandProfile(db, user.ID, BrandProfileInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = CreateLetter(db, user, 1, LetterInput{Name: "Offer", RecipientName: "Jane", Subject: "Hello", ProfileID: &profile.ID})
	require.NoError(t, err)
	_, err = CreateLetter(db, user, 1, LetterInput{Name: "Reminder"})
	require.NoError(t, err)

	buf, err := ExportLettersWorkbook(db, user.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Letters")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Last Modified", rows[0][6])

	var offer []string
	for _, r := range rows[1:] {
		if r[0] == "Offer" {
			offer = r
		}
	}
	require.NotNil(t, offer)
	assert.Equal(t, "Jane", offer[1])
	assert.Equal(t, "Acme", offer[4])
	assert.Equal(t, "1", offer[5])
}

func TestGenerateRecipientTemplate(t *testing.T) {
	buf, err := GenerateRecipientTemplate()
	require.NoError(t, err)

	count, err := AnalyzeRecipientFile(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func recipientWorkbook(t *testing.T, rows [][]string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Recipients")
	f.SetCellValue("Recipients", "A1", "Recipient Name*")
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue("Recipients", cell, v)
		}
	}
	return f
}

func TestImportRecipients(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "merge@example.com", models.PlanPro)
	base, err := CreateLetter(db, user, 1, LetterInput{Name: "Renewal", Subject: "Contract renewal", Body: "<p>Dear {{recipient.name}}</p>"})
	require.NoError(t, err)

	f := recipientWorkbook(t, [][]string{
		{"Jane Smith", "1 High St", "", ""},
		{"", "No name", "", ""},
		{"Bob Jones", "", "Custom subject", "Bob's letter"},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := ImportRecipients(db, user, 1, base.ID, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 3")

	jane, err := GetLetter(db, user.ID, result.Letters[0])
	require.NoError(t, err)
	assert.Equal(t, "Renewal - Jane Smith", jane.Name)
	assert.Equal(t, "Contract renewal", jane.Subject)
	assert.Equal(t, base.Body, jane.Body)

	bob, err := GetLetter(db, user.ID, result.Letters[1])
	require.NoError(t, err)
	assert.Equal(t, "Bob's letter", bob.Name)
	assert.Equal(t, "Custom subject", bob.Subject)
}

func TestImportRecipients_FreeLimit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "freemerge@example.com", models.PlanFree)
	base, err := CreateLetter(db, user, 2, LetterInput{Name: "Base"})
	require.NoError(t, err)

	f := recipientWorkbook(t, [][]string{{"A"}, {"B"}, {"C"}})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := ImportRecipients(db, user, 2, base.ID, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.SkippedOverLimitCount)
}
