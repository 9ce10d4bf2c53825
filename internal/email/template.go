package email

import (
	"bytes"
	"html/template"
	"math"
	"time"
)

const otpSubject = "Your OTP Code - AI Legal Assistant"

var otpTemplate = template.Must(template.New("otp").Parse(`<html>
<body>
    <h2>OTP Verification Code</h2>
    <p>Hello there,</p>
    <p>Your verification code for AI Legal Assistant is:</p>
    <div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; border-radius: 10px; margin: 20px 0;">
        {{.Code}}
    </div>
    <p><strong>This code will expire in {{.Minutes}} minutes.</strong></p>
    <p>If you didn't request this code, please ignore this email.</p>
    <hr>
    <p style="color: #666; font-size: 12px;">
        This is an automated message from AI Legal Assistant.<br>
        Please do not reply to this email.
    </p>
</body>
</html>
`))

// renderOTPEmail arma el HTML del codigo con los minutos restantes hasta expiresAt.
func renderOTPEmail(code string, expiresAt, now time.Time) (string, error) {
	minutes := int(math.Ceil(expiresAt.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: minutes})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
