package routes

import (
	"orderdesk-api/internal/adapters/http/handlers"
	"orderdesk-api/internal/adapters/http/middleware"
	"orderdesk-api/internal/adapters/persistence/models"
	"orderdesk-api/internal/config"
	"orderdesk-api/internal/core/services"
	"orderdesk-api/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// access lists the middleware in front of each group of resource routes
type access struct {
	list   []fiber.Handler
	item   []fiber.Handler
	create []fiber.Handler
	write  []fiber.Handler
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, svc *services.Services, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(svc.Auth)

	userHandler := handlers.NewResourceHandler[models.User]("User", svc.Users, svc.Auth, handlers.UserPolicy())
	roleHandler := handlers.NewResourceHandler[models.Role]("Role", svc.Roles, svc.Auth, handlers.Policy[models.Role]{})
	productHandler := handlers.NewResourceHandler[models.Product]("Product", svc.Products, svc.Auth, handlers.Policy[models.Product]{})
	menuHandler := handlers.NewResourceHandler[models.Menu]("Menu", svc.Menus, svc.Auth, handlers.Policy[models.Menu]{})
	promotionHandler := handlers.NewResourceHandler[models.Promotion]("Promotion", svc.Promotions, svc.Auth, handlers.Policy[models.Promotion]{})
	orderHandler := handlers.NewResourceHandler[models.Order]("Order", svc.Orders, svc.Auth, handlers.OrderPolicy())

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1", middleware.NoStore())
	apiV1.Get("/", healthHandler.APIInfo)

	authenticated := middleware.AuthMiddleware(svc.Auth)
	admin := middleware.AdminOnly()

	// Auth routes, registered before /users/:id
	userRoutes := apiV1.Group("/users")
	if cfg.IsProd() {
		userRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	} else {
		userRoutes.Post("/login", authHandler.Login)
	}
	userRoutes.Post("/logout", authHandler.Logout)
	userRoutes.Get("/me", authenticated, authHandler.Me)

	// Users: public sign-up, admin listing, owner-or-admin items
	mount(userRoutes, userHandler, access{
		list:   []fiber.Handler{authenticated, admin},
		item:   []fiber.Handler{authenticated},
		create: []fiber.Handler{middleware.OptionalAuth(svc.Auth)},
		write:  []fiber.Handler{authenticated},
	})

	// Roles: admin only
	adminOnly := []fiber.Handler{authenticated, admin}
	mount(apiV1.Group("/roles"), roleHandler, access{list: adminOnly, item: adminOnly, create: adminOnly, write: adminOnly})

	// Catalog: authenticated reads, admin writes
	catalog := access{
		list:   []fiber.Handler{authenticated},
		item:   []fiber.Handler{authenticated},
		create: adminOnly,
		write:  adminOnly,
	}
	mount(apiV1.Group("/products"), productHandler, catalog)
	mount(apiV1.Group("/menus"), menuHandler, catalog)
	mount(apiV1.Group("/promotions"), promotionHandler, catalog)

	// Orders: authenticated, ownership enforced by the order policy
	signedIn := []fiber.Handler{authenticated}
	mount(apiV1.Group("/orders"), orderHandler, access{list: signedIn, item: signedIn, create: signedIn, write: signedIn})
}

// mount registers the REST routes of a resource. /count goes before /:id.
func mount[T any](router fiber.Router, h *handlers.ResourceHandler[T], a access) {
	router.Get("/", with(a.list, h.List)...)
	router.Get("/count", with(a.list, h.Count)...)
	router.Post("/", with(a.create, h.Create)...)
	router.Head("/:id", with(a.item, h.Head)...)
	router.Get("/:id", with(a.item, h.Get)...)
	router.Patch("/:id", with(a.write, h.Update)...)
	router.Put("/:id", with(a.write, h.Update)...)
	router.Delete("/:id", with(a.write, h.Delete)...)
}

func with(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
