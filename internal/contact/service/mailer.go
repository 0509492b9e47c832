// Package service relays contact-form messages through the Resend API.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.resend.com"
	fromAddress    = "Portfolio Contact <onboarding@resend.dev>"
)

type Mailer struct {
	apiKey     string
	receiver   string
	baseURL    string
	httpClient *http.Client
}

func NewMailer(apiKey, receiver string) *Mailer {
	return &Mailer{
		apiKey:   apiKey,
		receiver: receiver,
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendResult is the Resend API's acknowledgement.
type SendResult struct {
	ID string `json:"id"`
}

// Send relays one contact-form submission to the configured mailbox, with
// the submitter's address as reply-to.
func (m *Mailer) Send(ctx context.Context, name, email, message string) (*SendResult, error) {
	body := resendRequest{
		From:    fromAddress,
		To:      []string{m.receiver},
		ReplyTo: email,
		Subject: "Portfolio Inquiry from " + name,
		HTML: "<h2>New Portfolio Contact Form Submission</h2>" +
			"<p><strong>From:</strong> " + name + "</p>" +
			"<p><strong>Email:</strong> " + email + "</p>" +
			"<p><strong>Message:</strong></p>" +
			"<p>" + strings.ReplaceAll(message, "\n", "<br>") + "</p>",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read email response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("resend api error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SendResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode email response: %w", err)
	}
	return &result, nil
}
