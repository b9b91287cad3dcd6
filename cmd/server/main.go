package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/api"
	"github.com/maheshrc27/xpilot/internal/api/handlers"
	"github.com/maheshrc27/xpilot/internal/api/middleware"
	"github.com/maheshrc27/xpilot/internal/logging"
	"github.com/maheshrc27/xpilot/internal/metrics"
	"github.com/maheshrc27/xpilot/internal/repository"
	"github.com/maheshrc27/xpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logging.New(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(appLogger)
	appLogger.Info("Application startup", "simulate_oauth", cfg.SimulateOAuth)

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	m := metrics.New()

	var uploader service.ObjectUploader
	if cfg.R2.Configured() {
		r2Service, err := service.NewR2Service(ctx, cfg.R2)
		if err != nil {
			log.Fatalf("Failed to configure media storage: %v", err)
		}
		uploader = r2Service
	} else {
		appLogger.Warn("R2 is not configured, media attachments are disabled")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	streamRepo := repository.NewStreamRepository(db)

	xClient := service.NewXClient(*cfg, m, appLogger)
	authorizer := service.NewXAuthorizer(*cfg)

	quotaService := service.NewQuotaService(quotaRepo, m, appLogger, time.Now)
	mediaService := service.NewMediaService(uploader, cfg.R2.PublicURL, appLogger)
	authService := service.NewAuthService(*cfg, userRepo, authorizer, xClient, quotaService, appLogger, time.Now)
	userService := service.NewUserService(*cfg, userRepo, xClient, quotaService, appLogger)
	postService := service.NewPostService(*cfg, postRepo, quotaService, xClient, mediaService, m, appLogger, time.Now)
	streamService := service.NewStreamService(streamRepo, appLogger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.Error("unhandled error", "path", c.Path(), "error", err)
			return api.ErrorHandler(c, err)
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	api.Register(app, api.Handlers{
		Auth:      handlers.NewAuthHandler(*cfg, authService, appLogger),
		Dashboard: handlers.NewDashboardHandler(userService, quotaService, postService, appLogger),
		Post:      handlers.NewPostHandler(postService, userService, appLogger),
		User:      handlers.NewUserHandler(userService, appLogger),
		Stream:    handlers.NewStreamHandler(streamService, appLogger),
	}, middleware.NewAuthMiddleware(*cfg, appLogger), m)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	appLogger.Info("Server is running", "url", cfg.SiteURL)

	gracefulShutdown(app, db, appLogger)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Failed to shut down server", "error", err)
	}

	closeDB(db)
	logger.Info("Server shutdown complete.")
}
