package domain

import "time"

// VerificationTicket prueba que un email paso la verificacion OTP.
// Es de un solo uso y queda ligado al registro OTP que lo origino.
type VerificationTicket struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	OTPID     string    `json:"otp_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
