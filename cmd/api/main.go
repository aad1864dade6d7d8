package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/madrasati-app/madrasati-api/api/swagger"
	"github.com/madrasati-app/madrasati-api/internal/handler"
	"github.com/madrasati-app/madrasati-api/internal/middleware"
	"github.com/madrasati-app/madrasati-api/internal/realtime"
	"github.com/madrasati-app/madrasati-api/internal/repository"
	"github.com/madrasati-app/madrasati-api/internal/service"
	"github.com/madrasati-app/madrasati-api/pkg/cache"
	"github.com/madrasati-app/madrasati-api/pkg/config"
	"github.com/madrasati-app/madrasati-api/pkg/database"
	"github.com/madrasati-app/madrasati-api/pkg/logger"
	corsmiddleware "github.com/madrasati-app/madrasati-api/pkg/middleware/cors"
	reqidmiddleware "github.com/madrasati-app/madrasati-api/pkg/middleware/requestid"
	"github.com/madrasati-app/madrasati-api/pkg/storage"
)

// @title Madrasati API
// @version 0.1.0
// @description School management backend for parents, teachers and administrators
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and cross-instance realtime disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	tickerRepo := repository.NewTickerRepository(db)
	themeRepo := repository.NewThemeRepository(db)

	hub := realtime.NewHub(cfg.Realtime.SendBufferSize, logger.Named(logr, "realtime"))
	bridge := realtime.NewBridge(redisClient, cfg.Realtime.RedisChannel, hub, logger.Named(logr, "realtime"))

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifications := service.NewNotificationService(cfg.Notifications, bridge, logger.Named(logr, "notifications"))
	notifications.Start(rootCtx)
	defer notifications.Stop()

	if cfg.Realtime.Enabled {
		bridge.Start(rootCtx)
		defer bridge.Stop()
	}

	roleService := service.NewRoleService(userRepo, logger.Named(logr, "roles"))
	linkService := service.NewLinkService(linkRepo, studentRepo, logger.Named(logr, "links"))
	authService := service.NewAuthService(userRepo, linkService, validate, logger.Named(logr, "auth"), service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "madrasati-api",
	})
	approvalService := service.NewApprovalService(userRepo, logger.Named(logr, "approvals"))
	studentService := service.NewStudentService(studentRepo, validate, logger.Named(logr, "students"))
	messageService := service.NewMessageService(messageRepo, linkRepo, bridge, notifications, validate, logger.Named(logr, "messages"))
	attendanceService := service.NewAttendanceService(attendanceRepo, linkRepo, validate, logger.Named(logr, "attendance"))
	gradeService := service.NewGradeService(gradeRepo, linkRepo, validate, logger.Named(logr, "grades"))
	homeworkService := service.NewHomeworkService(homeworkRepo, validate, logger.Named(logr, "homework"))
	tickerService := service.NewTickerService(tickerRepo, bridge, validate, logger.Named(logr, "ticker"))
	themeService := service.NewThemeService(themeRepo, logger.Named(logr, "theme"))
	extractionService := service.NewExtractionService(cfg.Extraction, validate, logger.Named(logr, "extraction"))
	reportService := service.NewReportService(attendanceRepo, gradeRepo, logger.Named(logr, "reports"))
	dashboardService := service.NewDashboardService(userRepo, studentRepo, linkRepo, messageRepo, tickerService, redisClient, cfg.Dashboard.CacheTTL, logger.Named(logr, "dashboard"))
	metricsService := service.NewMetricsService()

	sessions := realtime.NewSessionManager(hub, cfg.Realtime, logger.Named(logr, "realtime"))

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Approvals:  handler.NewApprovalHandler(approvalService, dashboardService),
		Students:   handler.NewStudentHandler(studentService, dashboardService),
		Links:      handler.NewLinkHandler(linkService),
		Messages:   handler.NewMessageHandler(messageService, metricsService),
		Attendance: handler.NewAttendanceHandler(attendanceService, linkService),
		Grades:     handler.NewGradeHandler(gradeService, linkService),
		Homework:   handler.NewHomeworkHandler(homeworkService, store, cfg.Storage.MaxFileSizeBytes),
		Ticker:     handler.NewTickerHandler(tickerService),
		Theme:      handler.NewThemeHandler(themeService),
		Extraction: handler.NewExtractionHandler(extractionService, studentService, dashboardService, metricsService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Reports:    handler.NewReportHandler(reportService),
		Files:      handler.NewFileHandler(store, signer, metricsService),
		Realtime:   handler.NewRealtimeHandler(sessions, hub, metricsService),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authService, roleService, metricsService)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
