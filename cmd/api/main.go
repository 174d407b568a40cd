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

	"tutor-hub/internal/config"
	"tutor-hub/internal/db"
	"tutor-hub/internal/email"
	apihttp "tutor-hub/internal/http"
	"tutor-hub/internal/jobs"
	"tutor-hub/internal/repository"
	"tutor-hub/internal/service"
	"tutor-hub/internal/storage"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)
	profileRepo := repository.NewPgTutorProfileRepository(pool)
	enrollmentRepo := repository.NewPgEnrollmentRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	limiter := service.NewMemoryRateLimiter()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory throttling", zap.Error(err))
		} else {
			limiter = service.NewRedisRateLimiter(redisClient)
		}
		cancel()
	}

	var uploader storage.Uploader
	if cfg.S3Bucket != "" {
		s3Uploader, err := storage.NewS3Uploader(ctx, cfg)
		if err != nil {
			logger.Warn("s3 uploader init failed", zap.Error(err))
		} else {
			uploader = s3Uploader
		}
	}

	tokenSvc := service.NewTokenService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		time.Duration(cfg.JWTAccessTTLHours)*time.Hour,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
	)
	otpSvc := service.NewOTPService(otpRepo)
	authSvc := service.NewAuthService(logger, userRepo, otpSvc, emailSender)
	profileSvc := service.NewTutorProfileService(profileRepo)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo)

	cookies := apihttp.NewCookieManager(
		cfg.CookieSecret,
		cfg.CookieSecure,
		cfg.CookieSameSite,
		tokenSvc.AccessTTL(),
		tokenSvc.RefreshTTL(),
	)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokenSvc, cookies)
	googleHandler := apihttp.NewGoogleHandler(
		logger,
		authSvc,
		tokenSvc,
		cookies,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.FrontendURL,
	)
	tutorHandler := apihttp.NewTutorProfileHandler(logger, profileSvc, uploader)
	enrollmentHandler := apihttp.NewEnrollmentHandler(logger, enrollmentSvc)
	uploadHandler := apihttp.NewUploadHandler(logger, uploader)

	router := apihttp.NewRouter(
		logger,
		cookies,
		tokenSvc,
		limiter,
		authHandler,
		googleHandler,
		tutorHandler,
		enrollmentHandler,
		uploadHandler,
		func(ctx context.Context) error { return db.Ping(ctx, pool) },
	)

	sweeper, err := jobs.StartOTPCleanup(cfg.OTPSweepSpec, otpRepo, logger)
	if err != nil {
		logger.Fatal("otp cleanup job", zap.Error(err))
	}
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
