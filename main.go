package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyportal/config"
	carerControllers "policyportal/controllers/carer"
	documentControllers "policyportal/controllers/documents"
	profileControllers "policyportal/controllers/profile"
	reportControllers "policyportal/controllers/reports"
	"policyportal/database"
	"policyportal/middleware"
	"policyportal/platform/llm"
	"policyportal/platform/logger"
	"policyportal/platform/mailer"
	"policyportal/platform/objectstore"
	"policyportal/routers/adminRoutes"
	"policyportal/routers/carerRoutes"
	"policyportal/routers/profileRoutes"
	"policyportal/services/enhance"
	"policyportal/services/lifecycle"
	"policyportal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	zapLogger, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if err := database.ConnectDb(cfg); err != nil {
		zapLogger.Fatal("Failed to connect to the database", zap.Error(err))
	}
	db := database.Database

	ctx := context.Background()
	store, err := objectstore.New(ctx, objectstore.Config{
		Mode:          cfg.StorageMode,
		UploadDir:     cfg.UploadDir,
		PublicBaseURL: cfg.PublicBaseURL,
		GCSBucket:     cfg.GCSBucket,
		S3Bucket:      cfg.S3Bucket,
		S3Region:      cfg.S3Region,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize object store", zap.Error(err))
	}

	emails := &utils.EmailService{
		Mailer: mailer.NewSendGrid(mailer.Config{
			APIKey:    cfg.SendGridAPIKey,
			BaseURL:   cfg.SendGridBaseURL,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}),
		OrgName: cfg.OrgName,
		AppURL:  cfg.AppURL,
	}

	lifecycleService := &lifecycle.Service{
		Store:    db,
		Notifier: emails,
		Limit:    cfg.NotifyConcurrency,
		Log:      zapLogger.Named("lifecycle"),
	}

	var relay *enhance.Relay
	if llmClient := llm.New(llm.Config{
		APIKey:    cfg.AnthropicAPIKey,
		BaseURL:   cfg.AnthropicBaseURL,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.AnthropicMaxTokens,
	}); llmClient.Configured() {
		relay = &enhance.Relay{
			Gen:     llmClient,
			Store:   db,
			OrgName: cfg.OrgName,
			Timeout: cfg.EnhanceTimeout,
			Log:     zapLogger.Named("enhance"),
		}
	}

	scheduler, err := utils.InitializeReviewScheduler(cfg.ReviewDigestCron, &utils.ReviewDigest{
		Store:       db,
		Email:       emails,
		DueSoonDays: cfg.ReviewDueSoonDays,
		Limit:       cfg.NotifyConcurrency,
	})
	if err != nil {
		zapLogger.Fatal("Failed to start review scheduler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		BodyLimit: (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))
	app.Use(middleware.RequestLogger(zapLogger.Named("http")))

	// Serve uploaded policy files when they are stored on local disk
	if local, ok := store.(*objectstore.Local); ok {
		app.Static("/uploads", local.Dir())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK!", nil)
	})

	auth := middleware.JWTMiddleware(cfg.JWTKey, cfg.JWTAudience, db)
	profileRoutes.SetupProfileRoutes(app, auth, &profileControllers.Handler{DB: db})
	adminRoutes.SetupAdminRoutes(app, auth,
		&documentControllers.Handler{
			DB:        db,
			Store:     store,
			Lifecycle: lifecycleService,
			Relay:     relay,
			MaxUpload: int64(cfg.MaxUploadMB) * 1024 * 1024,
			Log:       zapLogger.Named("documents"),
		},
		&reportControllers.Handler{DB: db, DueSoonDays: cfg.ReviewDueSoonDays},
	)
	carerRoutes.SetupCarerRoutes(app, auth, &carerControllers.Handler{DB: db, Log: zapLogger.Named("carer")})

	go func() {
		zapLogger.Info("Server is running", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zapLogger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		zapLogger.Error("Server shutdown", zap.Error(err))
	}
	if sqlDB, err := db.Db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
