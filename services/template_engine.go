package services

import (
	"html"
	"regexp"
	"strings"
)

// variableRegex matches {{variable.path}} patterns, tolerating inner spaces
var variableRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// RenderTemplate replaces {{variable}} placeholders in a letter body with
// HTML-escaped values. Unknown placeholders and empty values are left in place
// so the author can see what is still missing.
func RenderTemplate(content string, data TemplateData) string {
	return variableRegex.ReplaceAllStringFunc(content, func(match string) string {
		key := variableRegex.FindStringSubmatch(match)[1]

		value := getValueByKey(key, data)
		if value == "" {
			return match
		}
		return html.EscapeString(value)
	})
}

// UnresolvedPlaceholders lists the placeholders RenderTemplate could not fill
func UnresolvedPlaceholders(content string, data TemplateData) []string {
	var missing []string
	seen := map[string]bool{}
	for _, m := range variableRegex.FindAllStringSubmatch(content, -1) {
		key := m[1]
		if seen[key] || getValueByKey(key, data) != "" {
			continue
		}
		seen[key] = true
		missing = append(missing, key)
	}
	return missing
}

// getValueByKey retrieves a value from TemplateData using a dot-notation key
func getValueByKey(key string, data TemplateData) string {
	category, field, ok := strings.Cut(key, ".")
	if !ok {
		return ""
	}

	switch category {
	case "recipient":
		switch field {
		case "name":
			return data.Recipient.Name
		case "address":
			return data.Recipient.Address
		}
	case "brand":
		return getBrandValue(field, data.Brand)
	case "sender":
		switch field {
		case "name":
			return data.Sender.Name
		case "email":
			return data.Sender.Email
		}
	case "letter":
		if field == "subject" {
			return data.Letter.Subject
		}
	case "today":
		return getTodayValue(field, data.Today)
	}
	return ""
}

func getBrandValue(field string, brand BrandData) string {
	switch field {
	case "name":
		return brand.Name
	case "slogan":
		return brand.Slogan
	case "address":
		return brand.Address
	case "email":
		return brand.Email
	case "phone":
		return brand.Phone
	case "website":
		return brand.Website
	default:
		return ""
	}
}

func getTodayValue(field string, today DateData) string {
	switch field {
	case "date":
		return today.Date
	case "date_long":
		return today.DateLong
	case "year":
		return today.Year
	default:
		return ""
	}
}
