package http

import (
	"net/http"
	"testing"
	"time"

	"legal-companion/internal/domain"
	"legal-companion/internal/service"
)

func TestAuthHandlerSendOTP_Delivered(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.requestOTP = func(email string) (service.OTPIssued, error) {
		return service.OTPIssued{Email: email, TTL: 10 * time.Minute, Delivered: true}, nil
	}

	rec := performRequest(tr.engine(), http.MethodPost, "/auth/send-otp", map[string]string{"email": "a@example.com"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "OTP sent successfully via email" || body["expires_in_minutes"] != float64(10) {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["otp_code"]; ok {
		t.Fatalf("delivered otp must not leak the code")
	}
}

func TestAuthHandlerSendOTP_FallbackReturnsCode(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.requestOTP = func(email string) (service.OTPIssued, error) {
		return service.OTPIssued{Email: email, TTL: 10 * time.Minute, Code: "123456"}, nil
	}

	rec := performRequest(tr.engine(), http.MethodPost, "/auth/send-otp", map[string]string{"email": "a@example.com"}, "")
	body := decodeBody(t, rec)
	if body["otp_code"] != "123456" || body["message"] != "OTP sent successfully (email failed, check server logs)" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAuthHandlerSendOTP_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{service.ErrRateLimited, http.StatusTooManyRequests, msgRateLimited},
		{service.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
		{errBoomHTTP, http.StatusInternalServerError, "Failed to send OTP"},
	}
	for _, tt := range tests {
		tr := newTestRouter()
		tr.registrar.requestOTP = func(string) (service.OTPIssued, error) { return service.OTPIssued{}, tt.err }
		rec := performRequest(tr.engine(), http.MethodPost, "/auth/send-otp", map[string]string{"email": "a@example.com"}, "")
		expectDetail(t, rec, tt.status, tt.detail)
	}
}

func TestAuthHandlerSendOTP_ValidationError(t *testing.T) {
	tr := newTestRouter()
	rec := performRequest(tr.engine(), http.MethodPost, "/auth/send-otp", map[string]string{"email": "not-an-email"}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["detail"] != "Validation error" {
		t.Fatalf("unexpected detail %v", body["detail"])
	}
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("expected one field error, got %v", body["errors"])
	}
	first := errs[0].(map[string]any)
	if first["field"] != "body.email" || first["type"] != "value_error" {
		t.Fatalf("unexpected field error %v", first)
	}
	if body["body_received"] != `{"email":"not-an-email"}` {
		t.Fatalf("unexpected body_received %v", body["body_received"])
	}
}

func TestAuthHandlerVerifyOTP(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.verifyOTP = func(email, code string) (service.VerifiedEmail, error) {
		if code != "123456" {
			return service.VerifiedEmail{}, service.ErrOTPInvalid
		}
		return service.VerifiedEmail{Email: email, Ticket: "tkt", TTL: 30 * time.Minute}, nil
	}
	r := tr.engine()

	rec := performRequest(r, http.MethodPost, "/auth/verify-otp", map[string]string{"email": "a@example.com", "otp_code": " 123456 "}, "")
	body := decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["verification_ticket"] != "tkt" || body["verified"] != true {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if body["ticket_expires_in_minutes"] != float64(30) {
		t.Fatalf("unexpected ticket ttl %v", body["ticket_expires_in_minutes"])
	}

	rec = performRequest(r, http.MethodPost, "/auth/verify-otp", map[string]string{"email": "a@example.com", "otp_code": "000000"}, "")
	expectDetail(t, rec, http.StatusBadRequest, "Invalid OTP")
}

func TestAuthHandlerVerifyOTP_Expired(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.verifyOTP = func(string, string) (service.VerifiedEmail, error) {
		return service.VerifiedEmail{}, service.ErrOTPExpired
	}
	rec := performRequest(tr.engine(), http.MethodPost, "/auth/verify-otp", map[string]string{"email": "a@example.com", "otp_code": "1"}, "")
	expectDetail(t, rec, http.StatusBadRequest, "OTP has expired")
}

func TestAuthHandlerRegister(t *testing.T) {
	tr := newTestRouter()
	var got service.RegisterInput
	tr.registrar.register = func(in service.RegisterInput) (domain.User, error) {
		got = in
		return domain.User{ID: "u1", Username: in.Username, Email: in.Email, IsVerified: true}, nil
	}

	rec := performRequest(tr.engine(), http.MethodPost, "/auth/register", map[string]string{
		"username":            "alice",
		"email":               "alice@example.com",
		"password":            "pw",
		"verification_ticket": "tkt",
	}, "")
	body := decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["message"] != "User registered successfully" || body["id"] != "u1" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if got.VerificationTicket != "tkt" || got.Password != "pw" {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestAuthHandlerRegister_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{service.ErrEmailNotVerified, http.StatusBadRequest, msgEmailNotVerified},
		{service.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
		{service.ErrConflict, http.StatusConflict, "Username or email already exists"},
	}
	for _, tt := range tests {
		tr := newTestRouter()
		tr.registrar.register = func(service.RegisterInput) (domain.User, error) { return domain.User{}, tt.err }
		rec := performRequest(tr.engine(), http.MethodPost, "/auth/register", map[string]string{
			"username": "alice", "email": "alice@example.com", "password": "pw",
		}, "")
		expectDetail(t, rec, tt.status, tt.detail)
	}
}

func TestAuthHandlerResendOTPAlwaysReturnsCode(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.resendOTP = func(email string) (service.OTPIssued, error) {
		return service.OTPIssued{Email: email, TTL: 10 * time.Minute, Delivered: true, Code: "654321"}, nil
	}
	rec := performRequest(tr.engine(), http.MethodPost, "/auth/resend-otp", map[string]string{"email": "a@example.com"}, "")
	body := decodeBody(t, rec)
	if body["message"] != "OTP resent successfully" || body["otp_code"] != "654321" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAuthHandlerCheckEmail(t *testing.T) {
	tr := newTestRouter()
	tr.registrar.checkEmail = func(email string) (service.EmailAvailability, error) {
		if email == "taken@example.com" {
			return service.EmailAvailability{Message: "Email already registered"}, nil
		}
		return service.EmailAvailability{Available: true, Message: "Email available for registration"}, nil
	}
	r := tr.engine()

	body := decodeBody(t, performRequest(r, http.MethodGet, "/auth/check-email/taken@example.com", nil, ""))
	if body["available"] != false || body["message"] != "Email already registered" {
		t.Fatalf("unexpected body %v", body)
	}
	body = decodeBody(t, performRequest(r, http.MethodGet, "/auth/check-email/new@example.com", nil, ""))
	if body["available"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	tr := newTestRouter()
	tr.sessions.login = func(username, password string) (service.Session, error) {
		switch {
		case username == "pending":
			return service.Session{}, service.ErrEmailNotVerified
		case password != "pw":
			return service.Session{}, service.ErrInvalidCredentials
		}
		return service.Session{AccessToken: "jwt-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	r := tr.engine()

	rec := performRequest(r, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "pw"}, "")
	body := decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["access_token"] != "jwt-token" || body["token_type"] != "bearer" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}

	rec = performRequest(r, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "bad"}, "")
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid credentials")

	rec = performRequest(r, http.MethodPost, "/auth/login", map[string]string{"username": "pending", "password": "pw"}, "")
	expectDetail(t, rec, http.StatusUnauthorized, msgEmailNotVerified)

	rec = performRequest(r, http.MethodPost, "/auth/login", map[string]string{"username": "alice"}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAuthHandlerRefreshAndMe(t *testing.T) {
	tr := newTestRouter()
	tr.sessions.refresh = func(user domain.User) (service.Session, error) {
		return service.Session{AccessToken: "fresh-" + user.Username}, nil
	}
	r := tr.engine()

	rec := performRequest(r, http.MethodPost, "/auth/refresh", nil, "user-token")
	if body := decodeBody(t, rec); body["access_token"] != "fresh-alice" {
		t.Fatalf("unexpected refresh body %v", body)
	}

	rec = performRequest(r, http.MethodGet, "/auth/me", nil, "user-token")
	body := decodeBody(t, rec)
	if body["username"] != "alice" || body["email"] != "alice@example.com" {
		t.Fatalf("unexpected me body %v", body)
	}
	if _, ok := body["PasswordHash"]; ok {
		t.Fatalf("password hash must not be serialized")
	}

	rec = performRequest(r, http.MethodPost, "/auth/refresh", nil, "")
	expectDetail(t, rec, http.StatusUnauthorized, "Missing bearer token")
}
