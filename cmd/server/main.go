// Package main runs the ministry management HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/igrejaunida/backend/config"
	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/emaillogs"
	"github.com/igrejaunida/backend/internal/events"
	"github.com/igrejaunida/backend/internal/files"
	"github.com/igrejaunida/backend/internal/middleware"
	"github.com/igrejaunida/backend/internal/music"
	"github.com/igrejaunida/backend/internal/organizations"
	"github.com/igrejaunida/backend/internal/stats"
	"github.com/igrejaunida/backend/internal/teams"
	"github.com/igrejaunida/backend/internal/users"
	"github.com/igrejaunida/backend/pkg/database"
	"github.com/igrejaunida/backend/pkg/queue"
	"github.com/igrejaunida/backend/pkg/redis"
	"github.com/igrejaunida/backend/pkg/response"
	"github.com/igrejaunida/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			FilesBucket:          cfg.AWS.FilesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	var googleOAuth *auth.GoogleOAuth
	if cfg.Google.ClientID != "" {
		googleOAuth, err = auth.NewGoogleOAuth(ctx, cfg.Google)
		if err != nil {
			logger.Warn("google sign-in disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Repositories
	identityRepo := auth.NewRepository(pool)
	orgRepo := organizations.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	musicRepo := music.NewRepository(pool)
	fileRepo := files.NewRepository(pool)
	teamRepo := teams.NewRepository(pool)
	emailLogRepo := emaillogs.NewRepository(pool)

	// Identity resolution and sessions
	resolver := auth.NewResolver(cfg.Auth.SuperAdminEmails, userRepo, orgRepo, logger)
	sessionStore := auth.NewSessionStore(rdb.Client, jwtService.Expiry(), logger)

	// Handlers
	authHandler := auth.NewHandler(identityRepo, resolver, sessionStore, jwtService, googleOAuth, logger)
	orgHandler := organizations.NewHandler(orgRepo, logger)
	userHandler := users.NewHandler(userRepo, orgRepo, identityRepo, jobQueue, logger)
	eventHandler := events.NewHandler(eventRepo, userRepo, jobQueue, logger)
	musicHandler := music.NewHandler(musicRepo, logger)
	fileHandler := files.NewHandler(fileRepo, orgRepo, s3Client, logger)
	teamHandler := teams.NewHandler(teamRepo, userRepo, logger)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo, logger)
	statsHandler := stats.NewHandler(pool, orgRepo, userRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/google", authHandler.GoogleRedirect)
		authGroup.GET("/google/callback", authHandler.GoogleCallback)
	}

	// Protected API (JWT required, session resolved per request)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/session", authHandler.Session)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/password", authHandler.ChangePassword)

		scoped := api.Group("")
		scoped.Use(middleware.Session(resolver, sessionStore, logger))
		{
			scoped.GET("/auth/me", userHandler.Me)

			// Members
			scoped.GET("/users", userHandler.ListMine)
			scoped.POST("/users", middleware.RequireCapability(resolver, middleware.CanAddPeople), userHandler.Create)
			scoped.PATCH("/users/:id", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), userHandler.Update)
			scoped.POST("/users/:id/approve", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), userHandler.Approve)
			scoped.DELETE("/users/:id", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), userHandler.Delete)
			scoped.GET("/users/:id/positions", teamHandler.UserPositions)

			// Events
			scoped.GET("/events", eventHandler.List)
			scoped.GET("/events/:id", eventHandler.GetByID)
			scoped.POST("/events", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.Create)
			scoped.PATCH("/events/:id", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.Update)
			scoped.POST("/events/:id/cancel", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.Cancel)
			scoped.DELETE("/events/:id", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.Delete)
			scoped.POST("/events/:id/schedules", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.AddSchedule)
			scoped.DELETE("/events/:id/schedules/:scheduleID", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.DeleteSchedule)
			scoped.POST("/events/:id/blocks", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.AddBlock)
			scoped.DELETE("/events/:id/blocks/:blockID", middleware.RequireCapability(resolver, middleware.CanOrganizeEvents), eventHandler.DeleteBlock)

			// Music library
			scoped.GET("/music", musicHandler.List)
			scoped.GET("/music/:id", musicHandler.GetByID)
			scoped.POST("/music", middleware.RequireCapability(resolver, middleware.CanManageMedia), musicHandler.Create)
			scoped.PATCH("/music/:id", middleware.RequireCapability(resolver, middleware.CanManageMedia), musicHandler.Update)
			scoped.DELETE("/music/:id", middleware.RequireCapability(resolver, middleware.CanManageMedia), musicHandler.Delete)

			// Files (S3-backed)
			scoped.GET("/files", fileHandler.List)
			scoped.GET("/files/usage", fileHandler.Usage)
			scoped.POST("/files/upload-url", middleware.RequireCapability(resolver, middleware.CanManageMedia), fileHandler.UploadURL)
			scoped.POST("/files", middleware.RequireCapability(resolver, middleware.CanManageMedia), fileHandler.Confirm)
			scoped.GET("/files/:id/download-url", fileHandler.DownloadURL)
			scoped.DELETE("/files/:id", middleware.RequireCapability(resolver, middleware.CanManageMedia), fileHandler.Delete)

			// Ministry teams
			scoped.GET("/teams", teamHandler.List)
			scoped.GET("/teams/:id", teamHandler.GetByID)
			scoped.POST("/teams", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.Create)
			scoped.PATCH("/teams/:id", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.Update)
			scoped.DELETE("/teams/:id", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.Delete)
			scoped.POST("/teams/:id/positions", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.AddPosition)
			scoped.DELETE("/teams/:id/positions/:positionID", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.DeletePosition)
			scoped.POST("/teams/:id/positions/:positionID/members", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.Assign)
			scoped.DELETE("/teams/:id/members/:assignmentID", middleware.RequireCapability(resolver, middleware.IsOrgAdmin), teamHandler.Unassign)
		}

		// Admin master console (allow-list only, re-checked per request)
		admin := api.Group("/admin")
		admin.Use(middleware.RequireSuperAdmin(resolver))
		{
			admin.GET("/organizations", orgHandler.List)
			admin.GET("/organizations/stats", orgHandler.Stats)
			admin.GET("/organizations/:id", orgHandler.GetByID)
			admin.POST("/organizations", orgHandler.Create)
			admin.PATCH("/organizations/:id", orgHandler.Update)
			admin.DELETE("/organizations/:id", orgHandler.Delete)

			admin.GET("/users", userHandler.ListAll)
			admin.GET("/users/pending", userHandler.ListPending)
			admin.GET("/users/stats", userHandler.Stats)
			admin.POST("/users/:id/approve", userHandler.Approve)

			admin.GET("/email-logs", emailLogHandler.List)
			admin.GET("/dashboard", statsHandler.Dashboard)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
