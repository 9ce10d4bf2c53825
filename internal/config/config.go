package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	LLMProviderGemini = "gemini"
	LLMProviderOpenAI = "openai"

	EmailServiceGmail    = "gmail"
	EmailServiceSMTP     = "smtp"
	EmailServiceSendGrid = "sendgrid"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string   `env:"HTTP_PORT" envDefault:"8080"`
	Environment        string   `env:"ENV" envDefault:"production"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174,http://localhost:3000,http://localhost:8080,http://127.0.0.1:5173,http://127.0.0.1:5174,http://127.0.0.1:3000,http://127.0.0.1:8080"`
	MaxUploadMB        int64    `env:"MAX_UPLOAD_MB" envDefault:"20"`
	ProcessRequireAuth bool     `env:"PROCESS_REQUIRE_AUTH" envDefault:"false"`

	StoreBackend  string `env:"STORE_BACKEND" envDefault:"mongo"`
	MongoURL      string `env:"MONGODB_URL" envDefault:"mongodb://localhost:27017/legal_db"`
	MongoDBName   string `env:"MONGODB_DB_NAME" envDefault:"legal_db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DBTimeoutSecs int    `env:"DB_TIMEOUT_SECONDS" envDefault:"10"`

	JWTSecret        string `env:"JWT_SECRET,required,notEmpty"`
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`

	OTPExpireMinutes          int `env:"OTP_EXPIRE_MINUTES" envDefault:"10"`
	OTPMaxPerHour             int `env:"OTP_MAX_PER_HOUR" envDefault:"5"`
	VerificationTicketMinutes int `env:"VERIFICATION_TICKET_MINUTES" envDefault:"30"`

	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMBaseURL        string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`

	EmailEnabled     bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	EmailService     string `env:"EMAIL_SERVICE" envDefault:"gmail"`
	EmailFrom        string `env:"EMAIL_FROM"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"AI Legal Assistant"`
	EmailUsername    string `env:"EMAIL_USERNAME"`
	EmailPassword    string `env:"EMAIL_PASSWORD"`
	EmailSMTPServer  string `env:"EMAIL_SMTP_SERVER" envDefault:"smtp.gmail.com"`
	EmailSMTPPort    int    `env:"EMAIL_SMTP_PORT" envDefault:"587"`
	EmailUseTLS      bool   `env:"EMAIL_USE_TLS" envDefault:"true"`
	EmailImplicitTLS bool   `env:"EMAIL_IMPLICIT_TLS" envDefault:"false"`
	SendGridAPIKey   string `env:"SENDGRID_API_KEY"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	PDFFontPath string `env:"PDF_FONT_PATH"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.EmailService = strings.ToLower(strings.TrimSpace(c.EmailService))
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if strings.TrimSpace(c.MongoURL) == "" {
			return errors.New("MONGODB_URL is required for mongo backend")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.LLMProvider {
	case LLMProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("GEMINI_API_KEY is required")
		}
	case LLMProviderOpenAI:
		if strings.TrimSpace(c.LLMAPIKey) == "" {
			return errors.New("LLM_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.EmailService {
	case EmailServiceGmail, EmailServiceSMTP, EmailServiceSendGrid:
	default:
		return fmt.Errorf("unknown EMAIL_SERVICE %q", c.EmailService)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpireMinutes) * time.Minute
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPExpireMinutes) * time.Minute
}

func (c *Config) TicketTTL() time.Duration {
	return time.Duration(c.VerificationTicketMinutes) * time.Minute
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutSecs) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
