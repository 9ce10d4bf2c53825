package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"legal-companion/internal/service"
)

const (
	msgRateLimited      = "Too many OTP requests. Please wait before requesting another OTP."
	msgEmailTaken       = "Email already registered"
	msgUsernameTaken    = "Username already exists"
	msgEmailNotVerified = "Email not verified. Please verify your email with OTP first."
	msgInvalidOTP       = "Invalid OTP"
	msgOTPExpired       = "OTP has expired"
	msgConflict         = "Username or email already exists"
	msgInvalidCreds     = "Invalid credentials"
	msgInvalidID        = "Invalid user ID format"
	msgUserNotFound     = "User not found"
	msgAdminConfirm     = "To delete an admin user, you must provide confirmation: 'DELETE ADMIN'"
	msgUpstream         = "Language model is unavailable. Please try again later."
	msgUnavailable      = "Service not configured"
)

func writeDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// writeServiceError traduce errores de servicio a status HTTP. Lo que no
// reconoce se loguea y sale como 500 con el mensaje fallback.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var inErr *service.InputError
	switch {
	case errors.As(err, &inErr):
		writeDetail(c, http.StatusBadRequest, inErr.Msg)
	case errors.Is(err, service.ErrRateLimited):
		writeDetail(c, http.StatusTooManyRequests, msgRateLimited)
	case errors.Is(err, service.ErrEmailTaken):
		writeDetail(c, http.StatusBadRequest, msgEmailTaken)
	case errors.Is(err, service.ErrUsernameTaken):
		writeDetail(c, http.StatusBadRequest, msgUsernameTaken)
	case errors.Is(err, service.ErrEmailNotVerified):
		writeDetail(c, http.StatusBadRequest, msgEmailNotVerified)
	case errors.Is(err, service.ErrOTPInvalid):
		writeDetail(c, http.StatusBadRequest, msgInvalidOTP)
	case errors.Is(err, service.ErrOTPExpired):
		writeDetail(c, http.StatusBadRequest, msgOTPExpired)
	case errors.Is(err, service.ErrConflict):
		writeDetail(c, http.StatusConflict, msgConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(c, http.StatusUnauthorized, msgInvalidCreds)
	case errors.Is(err, service.ErrInvalidID):
		writeDetail(c, http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, service.ErrUserNotFound):
		writeDetail(c, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrAdminConfirmation):
		writeDetail(c, http.StatusBadRequest, msgAdminConfirm)
	case errors.Is(err, service.ErrSelfAction):
		writeDetail(c, http.StatusForbidden, "Cannot perform this action on your own account")
	case errors.Is(err, service.ErrUpstream):
		logger.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		writeDetail(c, http.StatusBadGateway, msgUpstream)
	case errors.Is(err, service.ErrServiceUnavailable):
		writeDetail(c, http.StatusServiceUnavailable, msgUnavailable)
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		writeDetail(c, http.StatusInternalServerError, fallback)
	}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

var registerTagNames sync.Once

// useJSONFieldNames hace que los errores de validacion usen el nombre json o form.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// writeValidationError responde 422 con el detalle por campo.
func writeValidationError(c *gin.Context, logger *zap.Logger, err error) {
	details := make([]fieldError, 0)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details = append(details, fieldError{
				Field:   "body." + fe.Field(),
				Message: validationMessage(fe),
				Type:    validationType(fe),
			})
		}
	} else {
		details = append(details, fieldError{Field: "body", Message: err.Error(), Type: "json_invalid"})
	}

	body := "N/A"
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		if b, ok := raw.([]byte); ok {
			body = string(b)
		}
	}
	logger.Warn("validation error", zap.String("path", c.FullPath()), zap.Any("errors", details))
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"detail":        "Validation error",
		"errors":        details,
		"body_received": body,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "String should have at least " + fe.Param() + " characters"
	case "max":
		return "String should have at most " + fe.Param() + " characters"
	case "len":
		return "String should have exactly " + fe.Param() + " characters"
	case "numeric":
		return "String should contain only digits"
	default:
		return fe.Error()
	}
}

func validationType(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing"
	case "email":
		return "value_error"
	case "min":
		return "string_too_short"
	case "len":
		return "string_length"
	case "max":
		return "string_too_long"
	default:
		return fe.Tag()
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
