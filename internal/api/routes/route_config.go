package routes

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/internal/api/handlers"
	"Apoteka-Backend/internal/middleware"
	"Apoteka-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	ReceiptHandler handlers.ReceiptHandler
	ShopHandler    handlers.ShopHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Receipts()
	c.Shop()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
		user.Patch("/update", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.UpdateUser)
		user.Post("/forget", c.UserHandler.ForgotPassword)
		user.Post("/reset", c.UserHandler.ResetPassword)
		user.Delete("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.DeleteAccount)
		user.Get("/stars/history", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.GetStarHistory)
	}
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts", c.Middleware.AuthMiddleware(c.JWTService))

	// Scanning is the pharmacist's job; clients only read their own history.
	receipts.Post("/scan", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ReceiptHandler.ScanReceipt)
	receipts.Get("/orphans", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ReceiptHandler.GetOrphanReceipts)
	receipts.Get("/me", c.Middleware.RoleMiddleware(domain.RoleClient), c.ReceiptHandler.GetMyReceipts)
}

func (c *Config) Shop() {
	shop := c.App.Group("/api/v1/shop", c.Middleware.AuthMiddleware(c.JWTService))

	shop.Get("/items", c.ShopHandler.GetShopItems)
	shop.Post("/items", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ShopHandler.AddShopItem)
	shop.Put("/items/:id", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ShopHandler.UpdateShopItem)
	shop.Delete("/items/:id", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ShopHandler.DeleteShopItem)
	shop.Post("/items/image", c.Middleware.RoleMiddleware(domain.RolePharmacist), c.ShopHandler.UploadShopItemImage)
	shop.Post("/purchase", c.Middleware.RoleMiddleware(domain.RoleClient), c.ShopHandler.PurchaseItem)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
