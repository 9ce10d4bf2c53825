package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legal-companion/internal/config"
	"legal-companion/internal/email"
	apihttp "legal-companion/internal/http"
	"legal-companion/internal/llm"
	"legal-companion/internal/pdf"
	"legal-companion/internal/repository"
	"legal-companion/internal/service"
	"legal-companion/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	st, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer st.Close()

	tickets := service.NewMemoryTicketStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory tickets", zap.Error(err))
		} else {
			tickets = service.NewRedisTicketStore(redisClient)
		}
		cancel()
	}

	emailSender, err := email.New(email.Options{
		Enabled:     cfg.EmailEnabled,
		Service:     cfg.EmailService,
		From:        cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		Username:    cfg.EmailUsername,
		Password:    cfg.EmailPassword,
		SMTPHost:    cfg.EmailSMTPServer,
		SMTPPort:    cfg.EmailSMTPPort,
		UseTLS:      cfg.EmailUseTLS,
		ImplicitTLS: cfg.EmailImplicitTLS,
		SendGridKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		logger.Warn("email sender init failed, otp codes will be returned in responses", zap.Error(err))
		emailSender = email.NewDisabledSender(err.Error())
	}

	var llmClient llm.LLMClient
	switch cfg.LLMProvider {
	case config.LLMProviderOpenAI:
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	default:
		llmClient = llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	}

	var archiver storage.Archiver
	if cfg.S3Bucket != "" {
		s3Archiver, err := storage.NewS3Archiver(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Warn("s3 archiver init failed, pdfs will not be archived", zap.Error(err))
		} else {
			archiver = s3Archiver
		}
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	authSvc := service.NewAuthService(logger, st.Users, jwtSvc)
	registrationSvc := service.NewRegistrationService(logger, st.Users, st.OTPs, emailSender, tickets, service.OTPPolicy{
		TTL:        cfg.OTPTTL(),
		MaxPerHour: cfg.OTPMaxPerHour,
		TicketTTL:  cfg.TicketTTL(),
	})
	if _, err := registrationSvc.SweepExpired(ctx); err != nil {
		logger.Warn("startup otp sweep failed", zap.Error(err))
	}
	adminSvc := service.NewAdminService(logger, st.Users, st.Searches, st.Pinger)
	documentSvc := service.NewDocumentService(logger, llmClient, pdf.NewExtractor(), st.Searches)
	exportSvc := service.NewExportService(logger, pdf.NewRenderer(cfg.PDFFontPath), archiver)

	router := apihttp.NewRouter(logger, authSvc, apihttp.Handlers{
		Auth:     apihttp.NewAuthHandler(logger, registrationSvc, authSvc),
		Document: apihttp.NewDocumentHandler(logger, documentSvc, exportSvc, cfg.MaxUploadBytes()),
		Admin:    apihttp.NewAdminHandler(logger, adminSvc),
		Health:   apihttp.NewHealthHandler(logger, st.Pinger, cfg.CORSOrigins),
	}, apihttp.RouterOptions{ProcessRequireAuth: cfg.ProcessRequireAuth})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           apihttp.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreBackend),
			zap.String("llm", cfg.LLMProvider),
			zap.Bool("email_enabled", cfg.EmailEnabled),
			zap.Bool("archive_enabled", archiver != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
