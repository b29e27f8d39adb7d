package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"warehouse/internal/model"
)

const resendEndpoint = "https://api.resend.com/emails"

// Mailer sends transactional email through the Resend API. Callers treat every
// send as fire-and-forget: failures are logged by the caller, never retried
// here and never surfaced to the end user.
type Mailer struct {
	apiKey      string
	fromEmail   string
	frontendURL string
	client      *http.Client
}

func NewMailer() *Mailer {
	return &Mailer{
		apiKey:      os.Getenv("RESEND_API_KEY"),
		fromEmail:   os.Getenv("EMAIL_FROM_ADDRESS"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured checks if the mailer has the credentials it needs
func (m *Mailer) IsConfigured() bool {
	return m.apiKey != "" && m.fromEmail != ""
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mailer not configured")
	}

	payload := sendEmailRequest{
		From:    m.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}

// SendLowStockAlert mails every warehouse manager that a product has dropped
// to or below its threshold
func (m *Mailer) SendLowStockAlert(product *model.Product, managers []model.User) error {
	body := fmt.Sprintf(
		"<html><body>"+
			"<p>Stock alert from <b>WareHouse</b></p>"+
			"<p>Product <b>%s</b> is down to %.2f %s (threshold %d).</p>"+
			"<p>Please restock soon.</p>"+
			"</body></html>",
		product.Name, product.StockValue, product.ProductUnit, product.ThresholdValue,
	)

	var firstErr error
	for _, manager := range managers {
		if err := m.send(manager.Email, "Low stock: "+product.Name, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendPasswordReset mails the reset link for the given token key
func (m *Mailer) SendPasswordReset(key string, user *model.User) error {
	body := fmt.Sprintf(
		"<html><body>"+
			"<p>Hi %s,</p>"+
			"<p>You requested a password reset on <b>WareHouse</b></p>"+
			"<p>Kindly click on the link below to reset your password</p>"+
			"<a href=\"%s?email=%s&token=%s\">Reset password</a>"+
			"</body></html>",
		user.FirstName, m.frontendURL, user.Email, key,
	)
	return m.send(user.Email, "Password Reset", body)
}
