package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classtrack/classtrack-api/api/swagger"
	"github.com/classtrack/classtrack-api/internal/handler"
	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	"github.com/classtrack/classtrack-api/internal/service"
	"github.com/classtrack/classtrack-api/pkg/cache"
	"github.com/classtrack/classtrack-api/pkg/config"
	"github.com/classtrack/classtrack-api/pkg/database"
	"github.com/classtrack/classtrack-api/pkg/logger"
	corsmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/requestid"
)

// @title ClassTrack API
// @version 1.0.0
// @description Role-based attendance tracking service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// Redis is optional: when unavailable the roster cache degrades to
	// pass-through and every lookup hits Postgres.
	var cacheRepo *repository.CacheRepository
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, roster cache disabled", "error", err)
			cacheEnabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.RosterTTL, logr, cacheEnabled)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(userRepo, studentRepo, teacherRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, subjectRepo, cacheSvc, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, teacherRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, sectionRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, sectionRepo, validate, logr)
	exportSvc := service.NewExportService(sectionRepo, attendanceRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc, enrollmentSvc, exportSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	meHandler := handler.NewMeHandler(enrollmentSvc, attendanceSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.New())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleTeacher))
	{
		admin.GET("/students", studentHandler.List)
		admin.POST("/students", studentHandler.Create)
		admin.GET("/students/:id", studentHandler.Get)
		admin.DELETE("/students/:id", studentHandler.Delete)

		admin.GET("/subjects", subjectHandler.List)
		admin.POST("/subjects", subjectHandler.Create)
		admin.DELETE("/subjects/:id", subjectHandler.Delete)

		admin.GET("/teachers", teacherHandler.List)
		admin.POST("/teachers", teacherHandler.Create)
		admin.DELETE("/teachers/:id", teacherHandler.Delete)

		admin.GET("/sections", sectionHandler.List)
		admin.POST("/sections", sectionHandler.Create)
		admin.DELETE("/sections/:id", sectionHandler.Delete)
		admin.GET("/sections/:id/roster", sectionHandler.Roster)
		admin.GET("/sections/:id/export", sectionHandler.Export)

		admin.POST("/enrollments", enrollmentHandler.Enroll)

		admin.GET("/attendance", attendanceHandler.List)
		admin.POST("/attendance", attendanceHandler.Mark)
	}

	me := authed.Group("/me")
	me.Use(middleware.RequireRoles(models.RoleStudent))
	{
		me.GET("/sections", meHandler.Sections)
		me.GET("/attendance", meHandler.Attendance)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
