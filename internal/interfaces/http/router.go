package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tienda-pos/backoffice-api/internal/application/auth"
	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	CustomerUC *usecase.CustomerUseCase
	ProductUC  *usecase.ProductUseCase
	DocumentUC *documents.UseCase
	ExportUC   *documents.ExportUseCase
	JWTSecret  string
	Cookie     CookieSettings
	Metrics    fiber.Handler // opcional: GET /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret, deps.Cookie.Name)

	// Auth (login y logout públicos)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Users (solo owner)
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", requireAuth, RequireRole(entity.RoleOwner))
	users.Get("/", userHandler.List)
	users.Post("/invite", userHandler.Invite)
	users.Patch("/:id/role", userHandler.ChangeRole)

	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := api.Group("/customers", requireAuth)
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Patch("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", requireAuth)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Patch("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Documents: las rutas fijas van antes de /:id
	docHandler := NewDocumentHandler(deps.DocumentUC, deps.ExportUC)
	docs := api.Group("/documents", requireAuth)
	docs.Get("/", docHandler.List)
	docs.Post("/", docHandler.Create)
	docs.Get("/stats/summary", docHandler.Stats)
	docs.Get("/export", docHandler.Export)
	docs.Get("/:id", docHandler.Get)
	docs.Patch("/:id", docHandler.Update)
	docs.Delete("/:id", docHandler.Delete)
	docs.Post("/:id/convert", docHandler.Convert)
	docs.Get("/:id/pdf", docHandler.PDF)
	docs.Get("/:id/xml", docHandler.XML)
}
