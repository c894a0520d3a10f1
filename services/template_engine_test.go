package services

import (
	"testing"
	"time"

	"letterhead/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	data := TemplateData{
		Recipient: RecipientData{Name: "Jane Park"},
		Brand:     BrandData{Name: "Acme & Co"},
		Letter:    LetterData{Subject: "Renewal"},
		Today:     DateData{Date: "2026-01-27", DateLong: "January 27, 2026"},
	}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Single variable",
			content:  "<p>Dear {{recipient.name}},</p>",
			expected: "<p>Dear Jane Park,</p>",
		},
		{
			name:     "Multiple variables",
			content:  "{{brand.name}} on {{today.date}}",
			expected: "Acme &amp; Co on 2026-01-27",
		},
		{
			name:     "Variables with whitespace",
			content:  "RE: {{  letter.subject  }}",
			expected: "RE: Renewal",
		},
		{
			name:     "Empty value keeps placeholder",
			content:  "{{recipient.address}}",
			expected: "{{recipient.address}}",
		},
		{
			name:     "Invalid category",
			content:  "{{unknown.name}}",
			expected: "{{unknown.name}}",
		},
		{
			name:     "Malformed tag",
			content:  "{{recipient.name}",
			expected: "{{recipient.name}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.content, data))
		})
	}
}

func TestRenderTemplateEscapesValues(t *testing.T) {
	data := TemplateData{Recipient: RecipientData{Name: `<script>alert(1)</script>`}}
	got := RenderTemplate("Hi {{recipient.name}}", data)
	assert.NotContains(t, got, "<script>")
}

func TestUnresolvedPlaceholders(t *testing.T) {
	data := TemplateData{Brand: BrandData{Name: "Acme"}}
	got := UnresolvedPlaceholders("{{brand.name}} {{recipient.name}} {{recipient.name}} {{nope}}", data)
	assert.Equal(t, []string{"recipient.name", "nope"}, got)
}

func TestBuildTemplateData(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	letter := &models.Letter{RecipientName: " Jane ", Subject: "Offer"}
	profile := &models.BrandProfile{CompanyName: "Acme", Website: "acme.test"}
	user := &models.User{Name: "Sam", Email: "sam@acme.test"}

	data := BuildTemplateData(letter, profile, user, now)

	assert.Equal(t, "Jane", data.Recipient.Name)
	assert.Equal(t, "Offer", data.Letter.Subject)
	assert.Equal(t, "Acme", data.Brand.Name)
	assert.Equal(t, "Sam", data.Sender.Name)
	assert.Equal(t, "2026-03-04", data.Today.Date)
	assert.Equal(t, "March 4, 2026", data.Today.DateLong)
	assert.Equal(t, "2026", data.Today.Year)

	empty := BuildTemplateData(nil, nil, nil, now)
	assert.Empty(t, empty.Brand.Name)
}

func TestGetVariableDictionary(t *testing.T) {
	keys := map[string]bool{}
	for _, cat := range GetVariableDictionary() {
		for _, v := range cat.Variables {
			keys[v.Key] = true
		}
	}
	for _, k := range []string{"recipient.name", "brand.name", "today.date"} {
		assert.True(t, keys[k], k)
	}
}
