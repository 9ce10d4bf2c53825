package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/service"
)

const currentUserKey = "current_user"

// Authenticator resuelve el usuario dueño de un bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// RequireAuth exige un bearer token valido y guarda el usuario en el contexto.
func RequireAuth(logger *zap.Logger, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			writeDetail(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		if !authenticate(c, logger, auth, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth deja pasar requests sin header Authorization salvo que
// required sea true. Un header presente pero mal formado o con token
// invalido siempre se rechaza.
func OptionalAuth(logger *zap.Logger, auth Authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			if required {
				writeDetail(c, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			writeDetail(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if !authenticate(c, logger, auth, token) {
			return
		}
		c.Next()
	}
}

// RequireAdmin va despues de RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			writeDetail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// CurrentUser obtiene el usuario autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}

func authenticate(c *gin.Context, logger *zap.Logger, auth Authenticator, token string) bool {
	if auth == nil {
		writeDetail(c, http.StatusServiceUnavailable, msgUnavailable)
		return false
	}
	user, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJWTExpired):
			writeDetail(c, http.StatusUnauthorized, "Token expired")
		case errors.Is(err, service.ErrJWTInvalid):
			writeDetail(c, http.StatusUnauthorized, "Invalid token")
		case errors.Is(err, service.ErrTokenPayload):
			writeDetail(c, http.StatusUnauthorized, "Invalid token payload")
		case errors.Is(err, service.ErrUserNotFound):
			writeDetail(c, http.StatusUnauthorized, msgUserNotFound)
		default:
			writeServiceError(c, logger, err, "Authentication failed")
		}
		return false
	}
	c.Set(currentUserKey, user)
	return true
}
