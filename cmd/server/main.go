package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"orderdesk-api/internal/adapters/http/middleware"
	"orderdesk-api/internal/adapters/http/routes"
	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/adapters/persistence/repositories"
	"orderdesk-api/internal/config"
	"orderdesk-api/internal/core/domain"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "orderdesk-api/docs" // Swagger docs
)

// @title OrderDesk API
// @version 1.0
// @description Order management API: users, roles, products, menus, promotions and orders.

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token id.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.AppMode, os.Stdout)
	log.Infof("✅ Configuration loaded successfully [MODE: %s]", cfg.AppMode)

	// Connect to database
	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Info("✅ Database migration completed")

	// Session token store
	tokens, closeTokens, err := tokenStore(cfg, db, log)
	if err != nil {
		log.Fatalf("❌ Failed to open session store: %v", err)
	}
	defer closeTokens()

	svc := services.New(db, tokens, cfg.Session.TTL, log)

	// Seed roles and the admin account
	if err := svc.Seeder.Run(context.Background(), services.SeedData{
		Roles:         domain.DefaultRoles,
		AdminEmail:    cfg.Admin.Email,
		AdminPassword: cfg.Admin.Password,
	}); err != nil {
		log.Fatalf("❌ Failed to seed database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "OrderDesk API v1.0",
		ErrorHandler: middleware.CustomErrorHandler(log),
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, svc, cfg)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	// Start server
	log.Infof("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// tokenStore opens the configured session store
func tokenStore(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) (repositories.TokenStore, func(), error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		log.Info("✅ Sessions stored in the database")
		return repositories.NewAccessTokenRepository(db), func() {}, nil
	}

	client, err := config.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", cfg.Redis.Addr).Info("✅ Sessions stored in Redis")
	return repositories.NewRedisTokenStore(client), func() { _ = client.Close() }, nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log logrus.FieldLogger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Errorf("❌ Error during shutdown: %v", err)
	}
	log.Info("✅ Server stopped gracefully")
}
