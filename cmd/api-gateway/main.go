package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/handler"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/database"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewRedisCacheRepository(redisClient)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Progress.CacheTTL, logr, true)
		}
	}

	termRepo := repository.NewTermRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	termService := service.NewTermService(termRepo, nil, logr).WithCache(cacheService)
	courseService := service.NewCourseService(courseRepo, termRepo, nil, logr).WithCache(cacheService)
	assessmentService := service.NewAssessmentService(assessmentRepo, courseService, nil, logr).WithCache(cacheService)
	reportService := service.NewReportService(termRepo, courseRepo, assessmentRepo, cacheService, service.ReportServiceConfig{
		UpcomingHorizon: cfg.Progress.UpcomingHorizon,
		CacheTTL:        cfg.Progress.CacheTTL,
	}, logr)
	searchService := service.NewSearchService(termRepo, courseRepo, assessmentRepo, logr)

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportService := service.NewExportService(reportService, store, signer, service.ExportConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Exports.ResultTTL,
		UpcomingHorizon: cfg.Progress.UpcomingHorizon,
	}, logr)

	go runExportCleanup(exportService, cfg.Exports.CleanupInterval, logr)

	authHandler := handler.NewAuthHandler(authService)
	termHandler := handler.NewTermHandler(termService)
	courseHandler := handler.NewCourseHandler(courseService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService)
	reportHandler := handler.NewReportHandler(reportService, exportService)
	searchHandler := handler.NewSearchHandler(searchService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/reports/download/:token", reportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/terms", termHandler.List)
		protected.POST("/terms", termHandler.Create)
		protected.GET("/terms/:id", termHandler.Get)
		protected.PUT("/terms/:id", termHandler.Update)
		protected.DELETE("/terms/:id", termHandler.Delete)
		protected.GET("/terms/:id/courses", courseHandler.ListByTerm)
		protected.GET("/terms/:id/progress", reportHandler.TermProgress)
		protected.GET("/terms/:id/report", reportHandler.TermReport)

		protected.POST("/courses", courseHandler.Create)
		protected.GET("/courses/:id", courseHandler.Get)
		protected.PUT("/courses/:id", courseHandler.Update)
		protected.DELETE("/courses/:id", courseHandler.Delete)
		protected.GET("/courses/:id/assessments", assessmentHandler.ListByCourse)

		protected.POST("/assessments", assessmentHandler.Create)
		protected.GET("/assessments/:id", assessmentHandler.Get)
		protected.PUT("/assessments/:id", assessmentHandler.Update)
		protected.DELETE("/assessments/:id", assessmentHandler.Delete)

		protected.GET("/progress", reportHandler.Progress)
		protected.GET("/reports/progress", reportHandler.ProgressReport)
		protected.GET("/reports/assessments", reportHandler.AssessmentsReport)
		protected.POST("/reports/export", reportHandler.Export)

		protected.GET("/search", searchHandler.Search)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func runExportCleanup(exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		deleted, err := exports.Cleanup(0)
		if err != nil {
			logr.Warn("export cleanup failed", zap.Error(err))
			continue
		}
		if len(deleted) > 0 {
			logr.Info("export cleanup removed files", zap.Int("count", len(deleted)))
		}
	}
}
