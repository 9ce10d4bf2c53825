package domain

import "time"

// OTP es un codigo de un solo uso asociado a un email.
type OTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"otp_code"`
	IsUsed    bool      `json:"is_used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiredAt reporta si el codigo ya no sirve en el instante now.
// El codigo deja de ser valido exactamente en ExpiresAt.
func (o OTP) ExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
