package config

import (
	"Apoteka-Backend/internal/api/handlers"
	"Apoteka-Backend/internal/api/routes"
	"Apoteka-Backend/internal/middleware"
	"Apoteka-Backend/internal/utils"
	"Apoteka-Backend/internal/utils/storage"
	"Apoteka-Backend/pkg/jwt"
	"Apoteka-Backend/pkg/portal"
	"Apoteka-Backend/pkg/receipt"
	"Apoteka-Backend/pkg/shop"
	"Apoteka-Backend/pkg/user"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Europe/Belgrade",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	portalBaseURL := utils.GetConfig("PORTAL_BASE_URL")
	if portalBaseURL == "" {
		portalBaseURL = portal.DefaultBaseURL
	}
	portalClient := portal.NewClient(portalBaseURL)

	// Repository
	userRepository := user.NewUserRepository(db)
	receiptRepository := receipt.NewReceiptRepository(db)
	shopRepository := shop.NewShopRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	receiptService := receipt.NewReceiptService(receiptRepository, portalClient)
	shopService := shop.NewShopService(shopRepository, s3)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	shopHandler := handlers.NewShopHandler(shopService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		ReceiptHandler: receiptHandler,
		ShopHandler:    shopHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
