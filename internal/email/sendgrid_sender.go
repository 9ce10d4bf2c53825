package email

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

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridSender envia correos con la API HTTP de SendGrid.
type SendGridSender struct {
	apiKey   string
	from     string
	fromName string
	endpoint string
	client   *http.Client
	now      func() time.Time
}

func NewSendGridSender(apiKey, from, fromName string) (*SendGridSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sendgrid from is required")
	}
	return &SendGridSender{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		endpoint: sendGridURL,
		client:   &http.Client{Timeout: smtpTimeout},
		now:      time.Now,
	}, nil
}

func (s *SendGridSender) SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	body, err := renderOTPEmail(code, expiresAt, s.now())
	if err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}

	payload := sendGridMail{
		Personalizations: []sendGridPersonalization{{
			To:      []sendGridAddress{{Email: toEmail}},
			Subject: otpSubject,
		}},
		From:    sendGridAddress{Email: s.from, Name: s.fromName},
		Content: []sendGridContent{{Type: "text/html", Value: body}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To      []sendGridAddress `json:"to"`
	Subject string            `json:"subject"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
