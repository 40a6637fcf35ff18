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

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/institute-admissions-api/api/swagger"
	"github.com/noah-isme/institute-admissions-api/internal/handler"
	"github.com/noah-isme/institute-admissions-api/internal/repository"
	"github.com/noah-isme/institute-admissions-api/internal/service"
	"github.com/noah-isme/institute-admissions-api/pkg/cache"
	"github.com/noah-isme/institute-admissions-api/pkg/config"
	"github.com/noah-isme/institute-admissions-api/pkg/database"
	"github.com/noah-isme/institute-admissions-api/pkg/jobs"
	"github.com/noah-isme/institute-admissions-api/pkg/logger"
	"github.com/noah-isme/institute-admissions-api/pkg/storage"
)

// @title Institute Admissions API
// @version 1.0.0
// @description Scholarship admissions, attendance and academic reports for coaching institutes
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache and distributed locks", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	registrations := repository.NewRegistrationRepository(db)
	batches := repository.NewBatchRepository(db)
	students := repository.NewStudentRepository(db)
	marks := repository.NewAttendanceRepository(db)
	grades := repository.NewGradeRepository(db)
	exams := repository.NewExamRepository(db)

	var cacheRepo service.CacheRepository
	var locker service.SessionLocker = service.NewLocalSessionLocker()
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "admissions:")
		if cfg.Attendance.LockEnabled {
			locker = service.NewChainedSessionLocker(locker, cache.NewLocker(redisClient, "lock:", cfg.Attendance.LockTTL, cfg.Attendance.LockTTL))
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Batches.CacheTTL, logr, cacheRepo != nil)

	examSvc := service.NewExamAttendanceService(registrations, exams, service.ExamAttendanceConfig{
		Storage:      exportStore,
		Signer:       storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		DownloadBase: cfg.APIPrefix + "/exports/",
	}, nil, metrics, validate, logr)
	statsWorker := service.NewStatsWorker(examSvc, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	examSvc.SetStatsScheduler(statsWorker)

	admissionSvc := service.NewAdmissionService(registrations, batches, students, cacheSvc, cfg.Batches.CacheTTL, statsWorker, metrics, validate, logr)
	attendanceSvc := service.NewAttendanceService(marks, grades, students, locker, metrics, validate, logr)
	marksSvc := service.NewMarksService(grades, cacheSvc, validate, logr)
	reportSvc := service.NewReportService(grades, cacheSvc, service.ReportServiceConfig{
		PassingThreshold: cfg.Reports.PassingThreshold,
		TopLimit:         cfg.Reports.TopLimit,
		CacheTTL:         cfg.Reports.CacheTTL,
	}, validate, logr)
	importSvc := service.NewStudentImportService(students, cfg.Imports.MaxRows, metrics, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := newRouter(cfg, logr, routeDeps{
		auth:           authSvc,
		metrics:        metrics,
		admission:      handler.NewAdmissionHandler(admissionSvc),
		attendance:     handler.NewAttendanceHandler(attendanceSvc),
		marks:          handler.NewMarksHandler(marksSvc),
		examAttendance: handler.NewExamAttendanceHandler(examSvc),
		reports:        handler.NewReportHandler(reportSvc),
		imports:        handler.NewStudentImportHandler(importSvc),
		observability:  handler.NewMetricsHandler(metrics, checks),
	})

	statsWorker.Start(ctx)
	defer statsWorker.Stop()
	go service.NewExportJanitor(exportStore, cfg.Exports.SignedURLTTL, cfg.Exports.CleanupInterval, logr).Run(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
