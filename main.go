package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard-be/internal/config"
	"taskboard-be/internal/controllers"
	"taskboard-be/internal/database"
	"taskboard-be/internal/logger"
	"taskboard-be/internal/middleware"
	"taskboard-be/internal/ratelimit"
	"taskboard-be/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.NewDefault(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect the configured store (runs migrations for postgres)
	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close store", slog.String("error", err.Error()))
		}
	}()

	// Shared rate limiter when Redis is available, per-process otherwise
	var limiter middleware.Limiter = middleware.NewLocalLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, using local rate limiter", slog.String("error", err.Error()))
		} else {
			defer rdb.Close()
			limiter = ratelimit.NewRedisLimiter(rdb, "", cfg.RateLimitRPS, cfg.RateLimitBurst)
			log.Info("connected to redis rate limiter")
		}
	}

	// Initialize services
	userService := service.NewUserService(store.Users, store.Tasks, cfg.StoreTimeout, log)
	taskService := service.NewTaskService(store.Tasks, store.Users, cfg.StoreTimeout, log)

	// Initialize controllers
	userController := controllers.NewUserController(userService)
	taskController := controllers.NewTaskController(taskService)
	healthController := controllers.NewHealthController(store)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())

	// Health check and metrics (no rate limiting)
	router.GET("/health", healthController.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter, log), middleware.StoreTimeout(cfg.StoreTimeout))
	controllers.RegisterRoutes(api, userController, taskController)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("server starting", slog.String("addr", cfg.HTTPAddr), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
