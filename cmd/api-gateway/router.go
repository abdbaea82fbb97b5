package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/handler"
	"github.com/noah-isme/seminary-calendar/internal/middleware"
	"github.com/noah-isme/seminary-calendar/internal/service"
	"github.com/noah-isme/seminary-calendar/pkg/config"
	"github.com/noah-isme/seminary-calendar/pkg/logger"
	corsmiddleware "github.com/noah-isme/seminary-calendar/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/seminary-calendar/pkg/middleware/requestid"
)

type routeHandlers struct {
	calendar *handler.CalendarHandler
	export   *handler.ExportHandler
	ops      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)
	r.GET("/metrics/summary", h.ops.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	cal := api.Group("/calendar")
	cal.GET("/export/:format", h.export.Export)

	read := cal.Group("", middleware.WithResponseMeta())
	read.GET("/academic-years", h.calendar.AcademicYears)
	read.GET("/academic-years/current", h.calendar.CurrentAcademicYear)
	read.GET("/categories", h.calendar.Categories)
	read.GET("/events", h.calendar.Events)
	read.GET("/month/:year/:month", h.calendar.Month)
	read.GET("/upcoming", h.calendar.Upcoming)
	read.GET("/statistics", h.calendar.Statistics)

	return r
}
