package services

import (
	"strings"
	"time"

	"letterhead/models"
)

// VariableCategory represents a group of placeholder variables
type VariableCategory struct {
	Name      string     `json:"name"`
	Variables []Variable `json:"variables"`
}

// Variable represents a single placeholder variable
type Variable struct {
	Key         string `json:"key"`   // e.g., "recipient.name"
	Label       string `json:"label"` // Display name
	Description string `json:"description"`
	Example     string `json:"example"`
}

// TemplateData holds all data for placeholder substitution in a letter body
type TemplateData struct {
	Recipient RecipientData `json:"recipient"`
	Brand     BrandData     `json:"brand"`
	Sender    SenderData    `json:"sender"`
	Letter    LetterData    `json:"letter"`
	Today     DateData      `json:"today"`
}

// RecipientData holds the addressee of the letter
type RecipientData struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BrandData holds the letterhead identity
type BrandData struct {
	Name    string `json:"name"`
	Slogan  string `json:"slogan"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// SenderData holds the account that writes the letter
type SenderData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LetterData holds letter-level fields
type LetterData struct {
	Subject string `json:"subject"`
}

// DateData holds current date template data
type DateData struct {
	Date     string `json:"date"`      // Short format: 2006-01-02
	DateLong string `json:"date_long"` // Long format: January 2, 2006
	Year     string `json:"year"`
}

// GetVariableDictionary returns all available placeholders organized by category
func GetVariableDictionary() []VariableCategory {
	return []VariableCategory{
		{
			Name: "Recipient",
			Variables: []Variable{
				{Key: "recipient.name", Label: "Recipient name", Example: "Ms. Jane Park"},
				{Key: "recipient.address", Label: "Recipient address", Example: "1 Main St, Springfield"},
			},
		},
		{
			Name: "Brand",
			Variables: []Variable{
				{Key: "brand.name", Label: "Company name", Example: "Acme Corp"},
				{Key: "brand.slogan", Label: "Slogan", Example: "Built to last"},
				{Key: "brand.address", Label: "Company address"},
				{Key: "brand.email", Label: "Company email"},
				{Key: "brand.phone", Label: "Company phone"},
				{Key: "brand.website", Label: "Website", Example: "www.example.com"},
			},
		},
		{
			Name: "Sender",
			Variables: []Variable{
				{Key: "sender.name", Label: "Your name"},
				{Key: "sender.email", Label: "Your email"},
			},
		},
		{
			Name: "Letter",
			Variables: []Variable{
				{Key: "letter.subject", Label: "Subject line"},
			},
		},
		{
			Name: "Date",
			Variables: []Variable{
				{Key: "today.date", Label: "Date", Description: "Current date (YYYY-MM-DD)", Example: "2026-01-27"},
				{Key: "today.date_long", Label: "Date (long)", Example: "January 27, 2026"},
				{Key: "today.year", Label: "Year", Example: "2026"},
			},
		},
	}
}

// BuildTemplateData collects placeholder values for a letter
func BuildTemplateData(letter *models.Letter, profile *models.BrandProfile, sender *models.User, now time.Time) TemplateData {
	data := TemplateData{
		Today: DateData{
			Date:     now.Format("2006-01-02"),
			DateLong: now.Format("January 2, 2006"),
			Year:     now.Format("2006"),
		},
	}
	if letter != nil {
		data.Recipient = RecipientData{
			Name:    strings.TrimSpace(letter.RecipientName),
			Address: strings.TrimSpace(letter.RecipientAddress),
		}
		data.Letter.Subject = letter.Subject
	}
	if profile != nil {
		data.Brand = BrandData{
			Name:    profile.CompanyName,
			Slogan:  profile.Slogan,
			Address: profile.Address,
			Email:   profile.Email,
			Phone:   profile.Phone,
			Website: profile.Website,
		}
	}
	if sender != nil {
		data.Sender = SenderData{Name: sender.Name, Email: sender.Email}
	}
	return data
}
