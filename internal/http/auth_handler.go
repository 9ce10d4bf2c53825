package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/service"
)

// Registrar cubre el flujo OTP de alta de usuarios.
type Registrar interface {
	RequestOTP(ctx context.Context, email string) (service.OTPIssued, error)
	ResendOTP(ctx context.Context, email string) (service.OTPIssued, error)
	VerifyOTP(ctx context.Context, email, code string) (service.VerifiedEmail, error)
	CompleteRegistration(ctx context.Context, in service.RegisterInput) (domain.User, error)
	CheckEmail(ctx context.Context, email string) (service.EmailAvailability, error)
}

// SessionIssuer emite access tokens.
type SessionIssuer interface {
	Login(ctx context.Context, username, password string) (service.Session, error)
	Refresh(user domain.User) (service.Session, error)
}

// AuthHandler mantiene dependencias para endpoints de /auth.
type AuthHandler struct {
	logger    *zap.Logger
	registrar Registrar
	sessions  SessionIssuer
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, registrar Registrar, sessions SessionIssuer) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, registrar: registrar, sessions: sessions}
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendOTP maneja POST /auth/send-otp.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	issued, err := h.registrar.RequestOTP(c.Request.Context(), req.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to send OTP")
		return
	}
	if issued.Delivered {
		c.JSON(http.StatusOK, otpResponse("OTP sent successfully via email", issued))
		return
	}
	c.JSON(http.StatusOK, otpResponse("OTP sent successfully (email failed, check server logs)", issued))
}

// ResendOTP maneja POST /auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	issued, err := h.registrar.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to resend OTP")
		return
	}
	c.JSON(http.StatusOK, otpResponse("OTP resent successfully", issued))
}

func otpResponse(message string, issued service.OTPIssued) gin.H {
	body := gin.H{
		"message":            message,
		"email":              issued.Email,
		"expires_in_minutes": int(issued.TTL.Minutes()),
	}
	if issued.Code != "" {
		body["otp_code"] = issued.Code
	}
	return body
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email"`
		OTPCode string `json:"otp_code" binding:"required"`
	}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	verified, err := h.registrar.VerifyOTP(c.Request.Context(), req.Email, strings.TrimSpace(req.OTPCode))
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to verify OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":                   "OTP verified successfully",
		"email":                     verified.Email,
		"verified":                  true,
		"verification_ticket":       verified.Ticket,
		"ticket_expires_in_minutes": int(verified.TTL.Minutes()),
	})
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username           string `json:"username" binding:"required"`
		Email              string `json:"email" binding:"required,email"`
		Password           string `json:"password" binding:"required"`
		VerificationTicket string `json:"verification_ticket"`
	}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	user, err := h.registrar.CompleteRegistration(c.Request.Context(), service.RegisterInput{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		VerificationTicket: req.VerificationTicket,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to register user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "User registered successfully",
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"is_verified": user.IsVerified,
	})
}

// CheckEmail maneja GET /auth/check-email/:email.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	availability, err := h.registrar.CheckEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to check email availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": availability.Available, "message": availability.Message})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	session, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) {
			writeDetail(c, http.StatusUnauthorized, msgEmailNotVerified)
			return
		}
		writeServiceError(c, h.logger, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(session))
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		writeDetail(c, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	session, err := h.sessions.Refresh(user)
	if err != nil {
		writeServiceError(c, h.logger, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, tokenResponse(session))
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		writeDetail(c, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	c.JSON(http.StatusOK, user)
}

func tokenResponse(session service.Session) gin.H {
	return gin.H{
		"access_token": session.AccessToken,
		"token_type":   "bearer",
		"expires_at":   session.ExpiresAt,
	}
}
