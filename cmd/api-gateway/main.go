package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/seminary-calendar/api/swagger"
	"github.com/noah-isme/seminary-calendar/internal/handler"
	"github.com/noah-isme/seminary-calendar/internal/repository"
	"github.com/noah-isme/seminary-calendar/internal/service"
	"github.com/noah-isme/seminary-calendar/pkg/cache"
	"github.com/noah-isme/seminary-calendar/pkg/config"
	"github.com/noah-isme/seminary-calendar/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Seminary Academic Calendar API
// @version 1.0.0
// @description Read-only gateway over the academic calendar backend
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	if cfg.Cache.PurgeOnStart {
		_ = cacheSvc.Invalidate(ctx, "*")
	}

	backend := repository.NewCalendarRepository(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil, metrics, logr)
	calendarSvc := service.NewCalendarService(backend, cacheSvc, validate, service.CalendarServiceConfig{
		MaxEventsPerDay: cfg.Calendar.MaxEventsPerDay,
		Location:        cfg.Calendar.Location(),
	}, logr)
	exportSvc := service.NewExportService(backend, metrics, validate, exportConfig(cfg), logr, nil)

	checks := map[string]handler.Pinger{"backend": backend}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}
	router := newRouter(cfg, logr, metrics, routeHandlers{
		calendar: handler.NewCalendarHandler(calendarSvc),
		export:   handler.NewExportHandler(exportSvc, logr),
		ops:      handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func exportConfig(cfg *config.Config) service.ExportConfig {
	return service.ExportConfig{
		FilenameBase:       cfg.Export.FilenameBase,
		UIDDomain:          cfg.Export.UIDDomain,
		ProductID:          cfg.Export.ProductID,
		AllDayEndExclusive: cfg.Export.AllDayEndExclusive,
		PageSize:           cfg.Export.PageSize,
		MaxPages:           cfg.Export.MaxPages,
		Location:           cfg.Calendar.Location(),
	}
}
