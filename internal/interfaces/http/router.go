package http

import (
	nethttp "net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/resto-pos-api/internal/application/conversion"
	"github.com/jhoicas/resto-pos-api/internal/application/recipe"
	"github.com/jhoicas/resto-pos-api/internal/application/sales"
	"github.com/jhoicas/resto-pos-api/internal/application/stock"
	"github.com/jhoicas/resto-pos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Conversions *conversion.Service
	Ledger      *stock.Ledger
	Resolver    *recipe.Resolver
	Engine      *sales.Engine
	Receipts    *sales.ReceiptUseCase
	JWTSecret   string
	JWTIssuer   string
}

// AppOptions configuración de la app Fiber y de las rutas de soporte.
type AppOptions struct {
	Name           string
	Log            zerolog.Logger
	Requests       RequestRecorder // nil = sin conteo de peticiones
	MetricsHandler nethttp.Handler // nil = sin /metrics
	SwaggerFile    string          // vacío o inexistente = sin /docs
}

// NewApp crea la app Fiber con recover, access log, /health, /metrics, /docs y las rutas de la API.
func NewApp(opts AppOptions, deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(AccessLog(opts.Log, opts.Requests))

	if opts.SwaggerFile != "" {
		if _, err := os.Stat(opts.SwaggerFile); err == nil {
			// Swagger UI: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: opts.SwaggerFile,
				Path:     "docs",
				Title:    opts.Name,
			}))
		} else {
			opts.Log.Warn().Str("file", opts.SwaggerFile).Msg("swagger no encontrado, /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": opts.Name})
	})
	if opts.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.MetricsHandler))
	}

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	stockRoles := RequireRole(jwt.RoleAdmin, jwt.RoleStockkeeper)
	saleRoles := RequireRole(jwt.RoleAdmin, jwt.RoleCashier)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Unidades
	unitHandler := NewUnitHandler(deps.Conversions)
	api.Get("/units", unitHandler.List)
	api.Post("/units/convert", unitHandler.Convert)

	// Materiales
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.Ledger, deps.Conversions)
	materials.Get("", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Post("/:id/adjustments", stockRoles, materialHandler.Adjust)
	materials.Get("/:id/history", stockRoles, materialHandler.History)
	materials.Get("/:id/reconciliation", adminOnly, materialHandler.Reconcile)
	materials.Get("/:id/conversions", materialHandler.ListConversions)
	materials.Post("/:id/conversions", stockRoles, materialHandler.CreateConversion)

	// Menú
	menuHandler := NewMenuHandler(deps.Resolver)
	api.Get("/menu-items/:id/availability", menuHandler.Availability)

	// Ventas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Engine, deps.Receipts)
	salesGroup.Post("", saleRoles, saleHandler.Create)
	salesGroup.Get("", saleRoles, saleHandler.List)
	salesGroup.Get("/:id", saleRoles, saleHandler.GetByID)
	salesGroup.Post("/:id/cancel", adminOnly, saleHandler.Cancel)
	salesGroup.Get("/:id/receipt", saleRoles, saleHandler.Receipt)
}
