package services

import (
	"testing"

	"letterhead/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmail_TestMode(t *testing.T) {
	cfg := &config.Config{EmailTestMode: true}
	email := &Email{
		To:       []string{"test@example.com"},
		Subject:  "Test",
		HTMLBody: "Body",
	}

	assert.NoError(t, SendEmail(cfg, email))
}

func TestSendEmail_NoApiKey(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false, ResendAPIKey: ""}
	email := &Email{
		To:       []string{"test@example.com"},
		Subject:  "Test",
		HTMLBody: "Body",
	}

	err := SendEmail(cfg, email)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY not configured")
}

func TestSendEmail_NoBody(t *testing.T) {
	cfg := &config.Config{EmailTestMode: false, ResendAPIKey: "key"}
	email := &Email{
		To:      []string{"test@example.com"},
		Subject: "Test",
	}

	err := SendEmail(cfg, email)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email must have either HTMLBody or TextBody")
}

func TestBuildPasswordResetEmail(t *testing.T) {
	email := BuildPasswordResetEmail("ada@example.com", "Ada <admin>", "https://app.test/reset-password?token=abc")

	assert.Equal(t, []string{"ada@example.com"}, email.To)
	assert.Contains(t, email.HTMLBody, `href="https://app.test/reset-password?token=abc"`)
	assert.Contains(t, email.HTMLBody, "Ada &lt;admin&gt;")
	assert.Contains(t, email.TextBody, "token=abc")
}

func TestBuildWelcomeEmail(t *testing.T) {
	email := BuildWelcomeEmail("ada@example.com", "Ada")
	assert.Equal(t, "Welcome to Letterhead", email.Subject)
	assert.Contains(t, email.HTMLBody, "Ada")
}

func TestBuildLetterEmail(t *testing.T) {
	pdf := []byte("%PDF-1.7")
	email := BuildLetterEmail("client@example.com", "Ada", "ada@example.com", "Offer: Q3/2026", "See attached.", pdf)

	assert.Equal(t, []string{"client@example.com"}, email.To)
	assert.Equal(t, "ada@example.com", email.ReplyTo)
	assert.Equal(t, "Offer: Q3/2026", email.Subject)
	assert.Contains(t, email.HTMLBody, "<p>See attached.</p>")
	assert.Contains(t, email.TextBody, "See attached.")

	require.Len(t, email.Attachments, 1)
	att := email.Attachments[0]
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, pdf, att.Content)
	assert.NotContains(t, att.Filename, "/")
	assert.Contains(t, att.Filename, ".pdf")
}
