package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRenderOTPEmail(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := renderOTPEmail("012345", now.Add(10*time.Minute), now)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(body, "012345") {
		t.Fatalf("expected code in body, got %q", body)
	}
	if !strings.Contains(body, "expire in 10 minutes") {
		t.Fatalf("expected expiry minutes in body, got %q", body)
	}
}

func TestBuildMessageHTMLHeaders(t *testing.T) {
	msg := buildMessage("from@example.com", "Legal Bot", "to@example.com", otpSubject, "<p>hi</p>")
	for _, want := range []string{
		"From: Legal Bot <from@example.com>",
		"To: to@example.com",
		"Subject: " + otpSubject,
		"Content-Type: text/html",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected header %q in %q", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>") {
		t.Fatalf("expected body after blank line, got %q", msg)
	}
}

func TestNewSMTPSenderValidation(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "from@example.com", "", TLSStartTLS); err == nil {
		t.Fatalf("expected error for missing host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", "", "", TLSStartTLS); err == nil {
		t.Fatalf("expected error for missing from")
	}
	s, err := NewSMTPSender("smtp.example.com", 0, "", "pw", "from@example.com", "", TLSNone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.port != 587 || s.username != "from@example.com" {
		t.Fatalf("expected defaults applied, got port=%d username=%q", s.port, s.username)
	}
}

func TestSendGridSender_Success(t *testing.T) {
	var got sendGridMail
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s, err := NewSendGridSender("sg-key", "from@example.com", "Legal Bot")
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	s.endpoint = srv.URL

	if err := s.SendVerificationOTP(context.Background(), "to@example.com", "123456", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if auth != "Bearer sg-key" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "to@example.com" {
		t.Fatalf("unexpected personalizations: %+v", got.Personalizations)
	}
	if got.Personalizations[0].Subject != otpSubject {
		t.Fatalf("unexpected subject %q", got.Personalizations[0].Subject)
	}
	if len(got.Content) != 1 || got.Content[0].Type != "text/html" || !strings.Contains(got.Content[0].Value, "123456") {
		t.Fatalf("unexpected content: %+v", got.Content)
	}
}

func TestSendGridSender_NonAcceptedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s, _ := NewSendGridSender("sg-key", "from@example.com", "")
	s.endpoint = srv.URL

	err := s.SendVerificationOTP(context.Background(), "to@example.com", "123456", time.Now().Add(time.Minute))
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDisabledSender(t *testing.T) {
	s := NewDisabledSender("email disabled")
	err := s.SendVerificationOTP(context.Background(), "to@example.com", "123456", time.Now())
	if !errors.Is(err, ErrDisabled) || !strings.Contains(err.Error(), "email disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	s, err := New(Options{Enabled: false, Service: ServiceSendGrid})
	if err != nil {
		t.Fatalf("disabled sender must not fail: %v", err)
	}
	if _, ok := s.(*disabledSender); !ok {
		t.Fatalf("expected disabled sender, got %T", s)
	}

	s, err = New(Options{Enabled: true, Service: ServiceGmail, Username: "bot@gmail.com", Password: "app-pass"})
	if err != nil {
		t.Fatalf("gmail: %v", err)
	}
	smtpSender, ok := s.(*SMTPSender)
	if !ok {
		t.Fatalf("expected smtp sender, got %T", s)
	}
	if smtpSender.host != gmailHost || smtpSender.tlsMode != TLSStartTLS || smtpSender.from != "bot@gmail.com" {
		t.Fatalf("unexpected gmail sender: %+v", smtpSender)
	}

	s, err = New(Options{Enabled: true, Service: "SMTP", SMTPHost: "mail.example.com", SMTPPort: 465, From: "no-reply@example.com", ImplicitTLS: true, UseTLS: true})
	if err != nil {
		t.Fatalf("smtp: %v", err)
	}
	if got := s.(*SMTPSender); got.tlsMode != TLSImplicit || got.port != 465 {
		t.Fatalf("unexpected smtp sender: %+v", got)
	}

	s, err = New(Options{Enabled: true, Service: ServiceSendGrid, SendGridKey: "sg", From: "no-reply@example.com"})
	if err != nil {
		t.Fatalf("sendgrid: %v", err)
	}
	if _, ok := s.(*SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", s)
	}
}

func TestNewRejectsIncompleteSettings(t *testing.T) {
	cases := []Options{
		{Enabled: true, Service: ServiceGmail, Username: "bot@gmail.com"},
		{Enabled: true, Service: ServiceSMTP, From: "a@example.com"},
		{Enabled: true, Service: ServiceSendGrid, From: "a@example.com"},
		{Enabled: true, Service: "carrier-pigeon"},
	}
	for _, opts := range cases {
		if _, err := New(opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}
