package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"letterhead/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []EmailAttachment
}

// EmailAttachment is a file sent along with an email
type EmailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In test mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		log.Printf("[INFO] Email logged (test mode - not actually sent)")
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
		ReplyTo: email.ReplyTo,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}
	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in test mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode - not actually sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	for _, a := range email.Attachments {
		log.Printf("Attachment: %s (%s, %d bytes)", a.Filename, a.ContentType, len(a.Content))
	}
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends an email in a goroutine so handlers do not block on it
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := *email
	emailCopy.To = append([]string{}, email.To...)
	emailCopy.Attachments = append([]EmailAttachment{}, email.Attachments...)

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, &emailCopy)
}

var (
	resetEmailTmpl = template.Must(template.New("reset").Parse(
		`<p>Hi {{.Name}},</p><p>We received a request to reset your Letterhead password.</p>` +
			`<p><a href="{{.Link}}">Choose a new password</a></p><p>The link expires in one hour. If you did not ask for this you can ignore this email.</p>`))
	welcomeEmailTmpl = template.Must(template.New("welcome").Parse(
		`<p>Welcome to Letterhead, {{.Name}}!</p><p>Create your first brand profile, write a letter and export it as a PDF or Word document.</p>`))
	letterEmailTmpl = template.Must(template.New("letter").Parse(
		`{{if .Message}}<p>{{.Message}}</p>{{end}}<p>Please find attached <strong>{{.Letter}}</strong> from {{.Sender}}.</p>`))
)

func execTemplate(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("[WARNING] Failed to render %s email: %v", t.Name(), err)
		return ""
	}
	return buf.String()
}

// BuildPasswordResetEmail creates the email carrying a reset link
func BuildPasswordResetEmail(userEmail, userName, resetLink string) *Email {
	data := struct{ Name, Link string }{userName, resetLink}
	return &Email{
		To:       []string{userEmail},
		Subject:  "Reset your Letterhead password",
		HTMLBody: execTemplate(resetEmailTmpl, data),
		TextBody: fmt.Sprintf("Hi %s,\n\nReset your password here: %s\n\nThe link expires in one hour.", userName, resetLink),
	}
}

// BuildWelcomeEmail creates a welcome email for new users
func BuildWelcomeEmail(userEmail, userName string) *Email {
	data := struct{ Name string }{userName}
	return &Email{
		To:       []string{userEmail},
		Subject:  "Welcome to Letterhead",
		HTMLBody: execTemplate(welcomeEmailTmpl, data),
		TextBody: fmt.Sprintf("Welcome to Letterhead, %s!", userName),
	}
}

// BuildLetterEmail wraps an exported letter PDF in an email to its recipient
func BuildLetterEmail(to, senderName, senderEmail, letterName, message string, pdf []byte) *Email {
	data := struct{ Letter, Sender, Message string }{letterName, senderName, message}
	text := fmt.Sprintf("Please find attached %s from %s.", letterName, senderName)
	if message != "" {
		text = message + "\n\n" + text
	}
	return &Email{
		To:       []string{to},
		ReplyTo:  senderEmail,
		Subject:  letterName,
		HTMLBody: execTemplate(letterEmailTmpl, data),
		TextBody: text,
		Attachments: []EmailAttachment{{
			Filename:    SafeFileName(letterName) + ".pdf",
			ContentType: "application/pdf",
			Content:     pdf,
		}},
	}
}
