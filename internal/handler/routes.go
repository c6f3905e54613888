package handler

import (
	"go-inventory-api/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Routes groups everything the HTTP surface needs.
type Routes struct {
	Auth        *AuthHandler
	Inventory   *InventoryHandler
	Statistics  *StatisticsHandler
	Hub         *ws.Hub
	RequireAuth fiber.Handler
	UploadDir   string
}

func (r Routes) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if r.UploadDir != "" {
		app.Static("/uploads", r.UploadDir)
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)

	products := api.Group("/products")
	products.Get("/", r.Inventory.GetProducts)
	products.Get("/categories", r.Inventory.GetCategories)
	// Fixed paths before /:id.
	products.Get("/export", r.RequireAuth, r.Inventory.ExportProducts)
	products.Get("/statistics", r.RequireAuth, r.Statistics.GetStatistics)
	products.Post("/import", r.RequireAuth, r.Inventory.ImportProducts)
	products.Get("/:id", r.Inventory.GetProduct)
	products.Get("/:id/history", r.RequireAuth, r.Inventory.GetHistory)
	products.Post("/", r.RequireAuth, r.Inventory.CreateProduct)
	products.Put("/:id", r.RequireAuth, r.Inventory.UpdateProduct)
	products.Delete("/:id", r.RequireAuth, r.Inventory.DeleteProduct)

	if r.Hub == nil {
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
		if !r.Hub.Join(c) {
			return
		}
		defer r.Hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
