package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"legal-companion/internal/metrics"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Auth     *AuthHandler
	Document *DocumentHandler
	Admin    *AdminHandler
	Health   *HealthHandler
}

type RouterOptions struct {
	// ProcessRequireAuth exige token en /process; si es false el token es opcional.
	ProcessRequireAuth bool
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, authn Authenticator, h Handlers, opts RouterOptions) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), metricsMiddleware())

	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bearer := RequireAuth(logger, authn)

	auth := r.Group("/auth")
	auth.POST("/send-otp", h.Auth.SendOTP)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/resend-otp", h.Auth.ResendOTP)
	auth.GET("/check-email/:email", h.Auth.CheckEmail)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", bearer, h.Auth.Refresh)
	auth.GET("/me", bearer, h.Auth.Me)

	r.POST("/process", OptionalAuth(logger, authn, opts.ProcessRequireAuth), h.Document.Process)
	r.POST("/generate-pdf", h.Document.GeneratePDF)

	admin := r.Group("/admin", bearer, RequireAdmin())
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users/create", h.Admin.CreateUser)
	admin.POST("/users/create-admin", h.Admin.CreateAdmin)
	admin.POST("/users/bulk-delete", h.Admin.BulkDelete)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.PUT("/users/:id/toggle-admin", h.Admin.ToggleAdmin)

	return r
}

// WithCORS envuelve el engine con las reglas CORS para los origenes del frontend.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", routeLabel(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := routeLabel(c)
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// routeLabel usa el patron de la ruta para no explotar la cardinalidad con ids.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
