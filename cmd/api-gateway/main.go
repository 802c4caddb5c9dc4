package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-planner/api/swagger"
	"github.com/noah-isme/sma-planner/internal/handler"
	"github.com/noah-isme/sma-planner/internal/middleware"
	"github.com/noah-isme/sma-planner/internal/repository"
	"github.com/noah-isme/sma-planner/internal/service"
	"github.com/noah-isme/sma-planner/pkg/cache"
	"github.com/noah-isme/sma-planner/pkg/config"
	"github.com/noah-isme/sma-planner/pkg/database"
	"github.com/noah-isme/sma-planner/pkg/jobs"
	"github.com/noah-isme/sma-planner/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-planner/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-planner/pkg/middleware/requestid"
	"github.com/noah-isme/sma-planner/pkg/storage"
)

// @title SMA Planner API
// @version 0.2.0
// @description Session planning API: sessions, selector catalogs, calendar windows and exports.
// @BasePath /
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, calendar cache disabled", "error", err)
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Planning.CalendarCacheTTL, logr, cfg.Planning.CalendarCacheEnabled && redisClient != nil)

	sessionRepo := repository.NewSessionRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	sessionSvc := service.NewSessionService(sessionRepo, catalogRepo, cacheSvc, metrics, validator.New(), logr, service.SessionServiceConfig{
		DefaultPageSize: cfg.Planning.DefaultPageSize,
		MaxPageSize:     cfg.Planning.MaxPageSize,
	})
	catalogSvc := service.NewCatalogService(catalogRepo, logr)
	calendarSvc := service.NewCalendarService(sessionRepo, cacheSvc, metrics, cfg.Planning.CalendarCacheTTL, time.Now, logr)
	exportSvc := service.NewExportService(calendarSvc, cfg.Exports.Enabled, logr, nil, nil)

	exportFiles, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage unavailable", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportJobRepo := repository.NewExportJobRepository(db)
	exportJobCfg := service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
		DownloadPath:    cfg.APIPrefix + "/planning/calendar/downloads",
	}
	exportWorker := service.NewExportJobWorker(exportJobRepo, exportSvc, exportFiles, signer, exportJobCfg, logr)
	exportQueue := jobs.NewQueue("calendar-exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportFiles, signer, cfg.Exports.Enabled, logr, exportJobCfg)
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	checks := map[string]handler.Pinger{"database": handler.PingFunc(db.PingContext)}
	if redisClient != nil {
		checks["cache"] = cacheRepo
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Sessions: handler.NewSessionHandler(sessionSvc),
		Catalog:  handler.NewCatalogHandler(catalogSvc),
		Planning: handler.NewPlanningHandler(catalogSvc, calendarSvc, exportSvc),
		Exports:  handler.NewExportJobHandler(exportJobSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
