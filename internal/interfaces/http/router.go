package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	Ledger     *inventory.RegisterMovementUseCase
	BarcodeUC  *inventory.BarcodeUseCase
	ReportUC   *inventory.ReportUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	barcodeHandler := NewBarcodeHandler(deps.BarcodeUC)
	products.Post("/", writers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/movements", inventoryHandler.History)
	products.Get("/:id/barcodes", barcodeHandler.List)
	products.Post("/:id/barcodes", writers, barcodeHandler.Add)

	// Barcodes
	barcodes := protected.Group("/barcodes")
	barcodes.Get("/resolve", barcodeHandler.Resolve)
	barcodes.Delete("/:id", writers, barcodeHandler.Delete)

	// Inventory movements
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", writers, inventoryHandler.RegisterMovement)
	invGroup.Put("/movements/:id", adminOnly, inventoryHandler.UpdateMovement)
	invGroup.Delete("/movements/:id", adminOnly, inventoryHandler.DeleteMovement)

	// Reports (solo lectura)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/valuation", reportHandler.Valuation)
	reports.Get("/ledger-drift", reportHandler.LedgerDrift)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.CategoryUC, deps.SupplierUC)
	categories := protected.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Post("/", writers, catalogHandler.CreateCategory)
	categories.Delete("/:id", adminOnly, catalogHandler.DeleteCategory)

	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", catalogHandler.ListSuppliers)
	suppliers.Post("/", writers, catalogHandler.CreateSupplier)
	suppliers.Delete("/:id", adminOnly, catalogHandler.DeleteSupplier)
}
