package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "legal-companion"

// JWTService emite y valida tokens de sesion HS256. No guarda estado.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Claims struct {
	jwt.RegisteredClaims
}

// Username devuelve el subject del token.
func (c Claims) Username() string {
	return c.Subject
}

var (
	ErrJWTInvalid = errors.New("invalid token")
	ErrJWTExpired = errors.New("token expired")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: tokenIssuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL expone la vida util de los tokens emitidos.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token para el username y devuelve tambien su expiracion.
func (s *JWTService) Issue(username string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrJWTInvalid
	}
	if strings.TrimSpace(username) == "" {
		return "", time.Time{}, ErrTokenPayload
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse valida firma, algoritmo y expiracion. Un subject vacio es ErrTokenPayload.
func (s *JWTService) Parse(tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrTokenPayload
	}
	return claims, nil
}
