package handler

import (
	"go-price-pilot/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the REST API under /api/v1 and the notification socket at /ws.
func SetupRoutes(app *fiber.App, catalog *CatalogHandler, dashboard *DashboardHandler, hub *ws.Hub) {
	api := app.Group("/api/v1")

	// Product Routes
	api.Get("/products", catalog.GetProducts)
	api.Post("/products", catalog.CreateProduct)
	api.Get("/products/:id", catalog.GetProduct)
	api.Put("/products/:id", catalog.UpdateProduct)
	api.Delete("/products/:id", catalog.DeleteProduct)
	api.Get("/products/:id/price", catalog.GetPrice)
	api.Post("/products/:id/price", catalog.GetPrice)
	api.Post("/products/:id/edit", catalog.BeginEdit)

	// Edit session
	api.Get("/edit", catalog.GetEditing)
	api.Delete("/edit", catalog.CancelEdit)

	// Category Routes
	api.Get("/categories", catalog.GetCategories)
	api.Post("/categories", catalog.CreateCategory)

	// Catalog lifecycle
	api.Get("/catalog/status", catalog.Status)
	api.Post("/catalog/reload", catalog.Reload)

	// Dashboard Routes
	api.Get("/dashboard/stats", dashboard.GetCatalogStats)

	if hub == nil {
		return
	}

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			return
		}
		defer hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
