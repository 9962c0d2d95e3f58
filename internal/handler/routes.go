package handler

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the REST API under /api.
func RegisterRoutes(app fiber.Router, products *ProductHandler, inventory *InventoryHandler, reports *ReportHandler) {
	api := app.Group("/api")

	// Product Routes
	p := api.Group("/products")
	p.Get("/", products.GetProducts)
	p.Post("/", products.CreateProduct)
	p.Get("/:id", products.GetProduct)
	p.Put("/:id", products.UpdateProduct)
	p.Delete("/:id", products.DeleteProduct)

	// Inventory Routes
	inv := api.Group("/inventory")
	inv.Post("/arrival", inventory.RecordArrival)
	inv.Post("/sale", inventory.Sell)
	inv.Post("/return", inventory.RecordReturn)
	inv.Post("/adjust", inventory.Adjust)
	inv.Get("/movements", inventory.GetMovements)
	inv.Get("/low-stock", reports.GetLowStock)
	inv.Get("/summary", reports.GetSummary)
	inv.Get("/reconcile", reports.GetReconcile)

	// Utils
	api.Get("/utils/product-by-barcode/:barcode", products.GetProductByBarcode)
}
