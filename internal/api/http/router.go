package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/http/handlers"
	"github.com/spec-kit/inventory-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	Movements      *handlers.MovementsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every /api route other than the auth
// exchange requires a bearer token; capabilities gate what each role reaches.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	can := auth.RequireCapability

	protected.Get("/users/me", can(auth.CapDashboard), cfg.Users.Me)
	protected.Get("/users", can(auth.CapUsersManage), cfg.Users.List)
	protected.Post("/users", can(auth.CapUsersManage), cfg.Users.Create)
	protected.Get("/users/:id", can(auth.CapUsersManage), cfg.Users.Get)
	protected.Put("/users/:id", can(auth.CapUsersManage), cfg.Users.Update)
	protected.Delete("/users/:id", can(auth.CapUsersManage), cfg.Users.Deactivate)

	protected.Get("/items", can(auth.CapItemsManage), cfg.Items.List)
	protected.Post("/items", can(auth.CapItemsManage), cfg.Items.Create)
	protected.Get("/items/:id", can(auth.CapItemsManage), cfg.Items.Get)
	protected.Put("/items/:id", can(auth.CapItemsManage), cfg.Items.Update)
	protected.Delete("/items/:id", can(auth.CapItemsManage), cfg.Items.Delete)

	protected.Post("/movements/checkin", can(auth.CapMovementsRecord), cfg.Movements.CheckIn)
	protected.Post("/movements/checkout", can(auth.CapMovementsRecord), cfg.Movements.CheckOut)
	protected.Get("/movements/mine", can(auth.CapEquipmentMine), cfg.Movements.Mine)
	protected.Get("/movements", can(auth.CapMovementsView), cfg.Movements.List)

	protected.Get("/reports/stock", can(auth.CapReportsView), cfg.Reports.Stock)
	protected.Get("/reports/movements", can(auth.CapReportsView), cfg.Reports.Movements)
	protected.Get("/reports/holdings", can(auth.CapReportsView), cfg.Reports.Holdings)
	protected.Get("/audit", can(auth.CapAuditView), cfg.Reports.Audit)
}
