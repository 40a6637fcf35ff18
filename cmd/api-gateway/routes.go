package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/handler"
	"github.com/noah-isme/institute-admissions-api/internal/middleware"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/internal/service"
	"github.com/noah-isme/institute-admissions-api/pkg/config"
	"github.com/noah-isme/institute-admissions-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/institute-admissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/institute-admissions-api/pkg/middleware/requestid"
)

type routeDeps struct {
	auth           *service.AuthService
	metrics        *service.MetricsService
	admission      *handler.AdmissionHandler
	attendance     *handler.AttendanceHandler
	marks          *handler.MarksHandler
	examAttendance *handler.ExamAttendanceHandler
	reports        *handler.ReportHandler
	imports        *handler.StudentImportHandler
	observability  *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.observability.Health)
	r.GET("/ready", deps.observability.Ready)
	r.GET("/metrics", deps.observability.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/exports/:token", deps.examAttendance.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.auth), middleware.WithResponseMeta())
	staff := middleware.RequireRoles(models.RoleTenantAdmin, models.RoleStaff)
	markers := middleware.RequireRoles(models.RoleTenantAdmin, models.RoleStaff, models.RoleTeacher)

	secured.GET("/batches", deps.admission.ListBatches)
	secured.GET("/metrics/system", middleware.RequireRoles(models.RoleTenantAdmin), deps.observability.System)

	exams := secured.Group("/scholarship-exams")
	exams.PUT("/registrations/:registrationId/attendance", staff, deps.examAttendance.Update)
	exams.GET("/:examId/registrations", deps.admission.ListRegistrations)
	exams.GET("/:examId/registrations/:registrationId/fee-quote", deps.admission.QuoteFee)
	exams.POST("/:examId/registrations/:registrationId/convert", staff, deps.admission.Convert)
	exams.PATCH("/:examId/registrations/:registrationId/enrollment-status", staff, deps.admission.UpdateEnrollmentStatus)
	exams.GET("/:examId/attendance", deps.examAttendance.Roster)
	exams.POST("/:examId/attendance/export", staff, deps.examAttendance.Export)
	exams.GET("/:examId/stats", deps.examAttendance.Stats)

	tests := secured.Group("/academics/tests/:testId/attendance")
	tests.GET("", deps.attendance.Session)
	tests.POST("/bulk", markers, deps.attendance.BulkMark)
	tests.PUT("/:studentId", markers, deps.attendance.Mark)
	tests.DELETE("/:studentId", markers, deps.attendance.Clear)

	marks := secured.Group("/academics/tests/:testId/marks")
	marks.GET("", deps.marks.List)
	marks.PUT("", markers, deps.marks.Enter)

	secured.GET("/academics/reports", deps.reports.Reports)
	secured.POST("/students/import", staff, deps.imports.Import)

	return r
}
