package handler

import (
	"errors"
	"log"

	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Ledger    *LedgerHandler
	Report    *ReportHandler
	Dashboard *DashboardHandler
	User      *UserHandler
	Role      *RoleHandler
}

// NewApp builds the Fiber app with the shared middleware stack.
// Unhandled errors never leak details to the client.
func NewApp(name string, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	if accessLog {
		app.Use(logger.New()) // Logging request
	}
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// SetupRoutes mounts the API, the websocket endpoint and the not-found fallback
func SetupRoutes(app *fiber.App, h Handlers, userRepo repository.UserRepository, hub *ws.Hub) {
	api := app.Group("/api/v1")
	optional := middleware.OptionalAuth(userRepo)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/password-reset", h.Auth.RequestPasswordReset)
	auth.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
	auth.Post("/logout", middleware.RequireAuth(userRepo), h.Auth.Logout)

	api.Get("/search", optional, h.Report.Search)
	api.Get("/catalog/options", h.Catalog.CatalogOptions)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	canDelete := middleware.RequirePrivilege(model.PrivCatalogDelete)

	protected.Get("/overview", h.Report.Overview)

	// Catalog Routes (deletion restricted to administrators)
	protected.Get("/companies", h.Catalog.GetCompanies)
	protected.Post("/companies", h.Catalog.CreateCompany)
	protected.Put("/companies/:id", h.Catalog.UpdateCompany)
	protected.Delete("/companies/:id", canDelete, h.Catalog.DeleteCompany)

	protected.Get("/shops", h.Catalog.GetShops)
	protected.Post("/shops", h.Catalog.CreateShop)
	protected.Put("/shops/:id", h.Catalog.UpdateShop)
	protected.Delete("/shops/:id", canDelete, h.Catalog.DeleteShop)

	protected.Get("/products", h.Catalog.GetProducts)
	protected.Post("/products", h.Catalog.CreateProduct)
	protected.Get("/products/:slug", h.Catalog.GetProduct)
	protected.Put("/products/:slug", h.Catalog.UpdateProduct)
	protected.Delete("/products/:slug", canDelete, h.Catalog.DeleteProduct)
	protected.Post("/products/:slug/photo", h.Catalog.UploadPhoto)
	protected.Get("/products/:slug/stock", h.Ledger.ProductEntries)

	// Stock Ledger Routes (owner checks happen in the service)
	protected.Post("/stock", h.Ledger.CreateEntry)
	protected.Put("/stock/:id", h.Ledger.UpdateEntry)
	protected.Delete("/stock/:id", h.Ledger.DeleteEntry)

	// Dashboard Routes
	protected.Get("/dashboard/stats", h.Dashboard.GetLedgerStats)
	protected.Get("/dashboard/intake", h.Dashboard.GetDailyIntake)

	// User Management Routes (with privilege checks)
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), h.User.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), h.User.GetUser)
	protected.Put("/users/:id/role", middleware.RequirePrivilege(model.PrivUserUpdate), h.User.UpdateUserRole)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), h.User.DeleteUser)

	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)

	// WebSocket Route: ?token=<jwt>
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireAuth(userRepo))
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		owner, _ := c.Locals("user_id").(string)
		hub.Register <- ws.Subscription{Client: c, OwnerID: owner}
		defer func() { hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// Unrouted URLs
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{"error": "Page not found"})
	})
}
