package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sashasmiles/clinic-backend/internal/api/router"
	"github.com/sashasmiles/clinic-backend/internal/appointments"
	appconfig "github.com/sashasmiles/clinic-backend/internal/config"
	"github.com/sashasmiles/clinic-backend/internal/contact"
	httpmiddleware "github.com/sashasmiles/clinic-backend/internal/http/middleware"
	"github.com/sashasmiles/clinic-backend/internal/notify"
	"github.com/sashasmiles/clinic-backend/internal/observability/metrics"
	"github.com/sashasmiles/clinic-backend/internal/telecrm"
	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic backend",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Repository: Postgres when configured, in-memory otherwise.
	var repo appointments.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = appointments.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory appointment store")
		repo = appointments.NewInMemoryRepository()
	}

	emailSender := buildEmailSender(cfg, logger)

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	channels := []notify.Channel{
		notify.NewPatientEmailChannel(emailSender, cfg.ClinicName),
		notify.NewOperatorEmailChannel(emailSender, cfg.OperatorEmail, cfg.ClinicName),
	}
	if cfg.TeleCRMEnterpriseID != "" && cfg.TeleCRMAPIToken != "" {
		crmClient := telecrm.NewClient(cfg.TeleCRMEnterpriseID, cfg.TeleCRMAPIToken, logger,
			telecrm.WithBaseURL(cfg.TeleCRMBaseURL))
		channels = append(channels, telecrm.NewLeadChannel(crmClient, telecrm.NewFieldMapper(nil), cfg.TeleCRMLeadSource))
	} else {
		logger.Warn("telecrm credentials not set, CRM lead channel disabled")
	}
	fanout := notify.NewFanout(channels, logger, bookingMetrics, cfg.NotifyTimeout)

	service := appointments.NewService(repo, fanout, logger, bookingMetrics, cfg.Location(), cfg.AllocationMaxAttempts)

	var intakeLimiter httpmiddleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()
		intakeLimiter = httpmiddleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute, "intake", logger)
	} else {
		intakeLimiter = httpmiddleware.NewTokenBucketLimiter(float64(cfg.RateLimitPerMin)/60.0, cfg.RateLimitPerMin)
	}

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(service, logger),
		ContactHandler:      contact.NewHandler(emailSender, cfg.OperatorEmail, cfg.ClinicName, logger),
		MetricsHandler:      promhttp.Handler(),
		IntakeLimiter:       intakeLimiter,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight notifications finish before the process exits.
	fanout.Wait()

	logger.Info("server stopped")
}

func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config, falling back to stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
