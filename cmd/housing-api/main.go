package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/housing-check-api/api/swagger"
	"github.com/noah-isme/housing-check-api/internal/handler"
	"github.com/noah-isme/housing-check-api/internal/middleware"
	"github.com/noah-isme/housing-check-api/internal/models"
	"github.com/noah-isme/housing-check-api/internal/repository"
	"github.com/noah-isme/housing-check-api/internal/service"
	"github.com/noah-isme/housing-check-api/pkg/cache"
	"github.com/noah-isme/housing-check-api/pkg/config"
	"github.com/noah-isme/housing-check-api/pkg/database"
	"github.com/noah-isme/housing-check-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/housing-check-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/housing-check-api/pkg/middleware/requestid"
	"github.com/noah-isme/housing-check-api/pkg/storage"
)

// @title Housing Check API
// @version 1.0.0
// @description Housing-safety verification workflow for student rentals
// @BasePath /
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "housing-check-api",
	})
	notificationSvc := service.NewNotificationService(notificationRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, store, cacheRepo, validate, logr)
	reviewSvc := service.NewReviewService(submissionRepo, campaignRepo, cacheRepo, validate, logr)
	campaignSvc := service.NewCampaignService(campaignRepo, groupRepo, cacheRepo, service.CampaignCacheConfig{
		Enabled:    cfg.Cache.Enabled,
		SummaryTTL: cfg.Cache.SummaryTTL,
		DetailTTL:  cfg.Cache.DetailTTL,
	}, validate, logr)
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	uploadHandler := handler.NewUploadHandler(store, signer, handler.UploadConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	}, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	r.GET("/files/*name", uploadHandler.Download)

	authed := r.Group("/", middleware.JWT(authSvc))
	{
		tutor := authed.Group("/", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin))
		{
			tutor.POST("/permission-create",
				middleware.Audit(userRepo, models.AuditActionCampaignOpen, "campaign"),
				campaignHandler.Open)
			tutor.GET("/my-permissions", campaignHandler.Summary)
			tutor.GET("/my-permissions/export", campaignHandler.Export)
			tutor.GET("/my-groups", campaignHandler.Groups)
			tutor.POST("/special",
				middleware.Audit(userRepo, models.AuditActionOverride, "campaign"),
				campaignHandler.Override)
			tutor.POST("/appartment/check",
				middleware.Audit(userRepo, models.AuditActionReview, "submission"),
				reviewHandler.Review)
			tutor.GET("/appartment/status/:status", submissionHandler.ListByStatus)
			tutor.GET("/:permissionId", campaignHandler.Detail)
			tutor.GET("/:permissionId/:groupId", campaignHandler.Detail)
		}

		student := authed.Group("/", middleware.RequireRoles(models.RoleStudent, models.RoleAdmin))
		{
			student.POST("/appartment/create", submissionHandler.Create)
			student.PUT("/appartment/:id", submissionHandler.Update)
		}

		authed.POST("/upload", uploadHandler.Upload)

		notifications := authed.Group("/notification")
		{
			notifications.POST("/report", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin), notificationHandler.CreateReport)
			notifications.POST("/push", middleware.RequireRoles(models.RoleTutor, models.RoleAdmin), notificationHandler.CreatePush)
			notifications.GET("/report/:userId", middleware.RBAC("TUTOR", "ADMIN", "SELF"), notificationHandler.ListReport)
			notifications.GET("/push/:userId", middleware.RBAC("TUTOR", "ADMIN", "SELF"), notificationHandler.ListPush)
			notifications.PUT("/report/:userId/read", middleware.RBAC("TUTOR", "ADMIN", "SELF"), notificationHandler.MarkAllRead)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
