package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"attendance-monitor/internal/app"
	"attendance-monitor/internal/attendance"
	"attendance-monitor/internal/auth"
	"attendance-monitor/internal/config"
	"attendance-monitor/internal/httpmiddleware"
	"attendance-monitor/internal/reporting"
	"attendance-monitor/internal/store"
	"attendance-monitor/internal/web"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	lg := app.Logger(cfg)

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, lg); err != nil {
		lg.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App, lg zerolog.Logger) error {
	db, err := store.NewDB(cfg.DBDriver, cfg.DatabaseURL, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	accounts, err := app.Prepare(ctx, cfg, db, lg)
	if err != nil {
		return err
	}

	var redisClient *store.Redis
	if cfg.SessionBackend == "redis" || cfg.RateLimitBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		if !redisClient.Healthy(ctx) {
			lg.Warn().Str("addr", cfg.RedisAddr).Msg("redis not reachable yet")
		}
	}

	var revocations auth.Revocations = auth.NewMemoryRevocations()
	if cfg.SessionBackend == "redis" {
		revocations = auth.NewRedisRevocations(redisClient.Client)
	}
	var limiter httpmiddleware.Limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, "attendance:ratelimit:login", cfg.RateLimitPerMin)
	}

	ledger := attendance.NewService(attendance.NewRepository(db.Gorm), lg)
	sessions := auth.NewSessions(cfg.SessionSigningKey, cfg.SessionIssuer, cfg.SessionTTL)

	r, err := web.NewRouter(web.Deps{
		Accounts:     accounts,
		Attendance:   ledger,
		Reports:      reporting.NewService(accounts, ledger),
		Chart:        reporting.NewPieChart(),
		Sessions:     auth.NewMiddleware(sessions, revocations, accounts, cfg.Production(), lg),
		LoginLimiter: limiter,
		DB:           db,
		Redis:        redisClient,
		Logger:       lg,
	})
	if err != nil {
		return err
	}

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		lg.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("server forced shutdown")
	}

	lg.Info().Msg("server exited")
	return nil
}
